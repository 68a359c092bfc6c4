package shop

import "time"

// Order is a purchase.
//
//es:document index=orders
type Order struct {
	ID          string           `es:"keyword"`
	Customer    *Customer        `es:"object"`
	Items       []OrderItem      `es:"nested"`
	Description string           `es:"type=text fields=keyword:keyword,raw:keyword"`
	Shipping    Order_Shipping   `es:"object name=ship_to"`
	Labels      map[string]Label `es:"object"`
	Tags        Set[Tag]         `es:"nested"`
	CreatedAt   time.Time        `es:"date"`
	Total       float64          `es:"double"`
	Secret      secret           `es:"object"`
	Audit       auditTrail       `es:"object"`
	Bad         string           `es:"type=enum"`
	Internal    string
	Skipped     string `es:"-"`
}

//es:field double
func (o Order) GetTotal() float64 { return o.Total }

//es:field keyword
func (o Order) Notes(prefix string) string { return prefix }

//es:field text
func (o *Order) Summary() string { return o.Description }

func (o Order) Untracked() string { return "" }

type Customer struct {
	Name  string `es:"text"`
	Email string `es:"keyword"`
}

type OrderItem struct {
	SKU string `es:"keyword"`
	Qty int    `es:"integer"`
}

type Order_Shipping struct {
	City string `es:"keyword"`
}

type Label struct {
	Text string `es:"keyword"`
}

type Tag struct {
	Label string `es:"keyword"`
}

type Set[T any] struct {
	items []T
}

type secret struct {
	Token string `es:"keyword"`
}

//es:include
type auditTrail struct {
	By string `es:"keyword"`
}

//es:document index=drafts
type draft struct {
	Body string `es:"text"`
}

type Status string
