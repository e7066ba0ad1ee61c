package feed

import "github.com/shopspring/decimal"

// Page is one response of the paginated upstream feed. Pages.Next carries the
// cursor path of the following page, empty on the last one.
type Page struct {
	Pages   Cursor   `json:"pages"`
	Objects []Thread `json:"objects"`
}

type Cursor struct {
	Next string `json:"next"`
}

// Thread is one feed record. Its shape drifts across feed versions; every
// field of PublishedContent must be treated as optional.
type Thread struct {
	ID               string            `json:"id"`
	ProductInfo      []ProductInfo     `json:"productInfo"`
	PublishedContent *PublishedContent `json:"publishedContent"`
}

type ProductInfo struct {
	MerchProduct   MerchProduct   `json:"merchProduct"`
	ProductContent ProductContent `json:"productContent"`
	MerchPrice     MerchPrice     `json:"merchPrice"`
	LaunchView     *LaunchView    `json:"launchView"`
}

type MerchProduct struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	StyleColor        string `json:"styleColor"`
	CommerceStartDate string `json:"commerceStartDate"`
}

type ProductContent struct {
	FullTitle string `json:"fullTitle"`
}

type MerchPrice struct {
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Currency     string          `json:"currency"`
}

type LaunchView struct {
	StartEntryDate string `json:"startEntryDate"`
}

// PublishedContent holds the editorial metadata of a thread. Cards and SEO
// fields are mutually substitutable sources for display names and image URLs;
// none of them is guaranteed to be present.
type PublishedContent struct {
	Properties ContentProperties `json:"properties"`
}

type ContentProperties struct {
	CoverCard   Card `json:"coverCard"`
	ProductCard Card `json:"productCard"`
	SEO         SEO  `json:"seo"`
}

type Card struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	SquarishURL string `json:"squarishURL"`
}

type SEO struct {
	Title string `json:"title"`
}
