package model

import (
	"strings"
	"time"
)

// Status is the upstream merchandising status of a product.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusUpcoming Status = "UPCOMING"
	StatusHold     Status = "HOLD"
	StatusCloseout Status = "CLOSEOUT"
)

// Product is the canonical record persisted per ingestion cycle.
// Ids are regenerated every run; no identity is carried across cycles.
type Product struct {
	ID              string    `json:"id" bson:"id"`
	Status          Status    `json:"status" bson:"status"`
	Name            string    `json:"name" bson:"name"`
	SKU             string    `json:"sku" bson:"sku"`
	Price           string    `json:"price" bson:"price"`
	ReleaseDateTime time.Time `json:"releaseDateTime" bson:"releaseDateTime"`
	ImageURL        string    `json:"imageUrl" bson:"imageUrl"`
}

// Channel is a sales surface the upstream feed can be filtered by.
type Channel struct {
	Name string // feed channelName filter value, e.g. "SNKRS Web"
	Slug string // collection name prefix, e.g. "snkrs"
}

var (
	ChannelSNKRS    = Channel{Name: "SNKRS Web", Slug: "snkrs"}
	ChannelCommerce = Channel{Name: "Nike.com", Slug: "nike"}
)

// Channels lists the surfaces ingested for every country, in a fixed order.
var Channels = []Channel{ChannelSNKRS, ChannelCommerce}

// CollectionName returns the snapshot collection for a (channel, country) pair,
// e.g. "snkrs-us".
func CollectionName(ch Channel, country string) string {
	return ch.Slug + "-" + strings.ToLower(country)
}
