package entity

import "time"

// Client representa un cliente al que se le registran órdenes de venta.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
