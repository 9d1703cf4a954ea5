package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a player's connection to a game session
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// Send is a channel for sending messages to the client
	Send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	session *Session
	seat    int
}

// NewClient returns a new client for the given seat
func NewClient(conn *websocket.Conn, seat int) *Client {
	return &Client{
		Conn:  conn,
		Send:  make(chan interface{}, 256),
		Close: make(chan string),
		seat:  seat,
	}
}

// Seat returns the seat the client holds a ticket for
func (c *Client) Seat() int {
	return c.seat
}

// String returns a traceable identifier for the client
func (c *Client) String() string {
	if c.session == nil {
		return fmt.Sprintf("seat-%d", c.seat)
	}

	return fmt.Sprintf("seat-%d@%s", c.seat, c.session.UUID())
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *PayloadIn) {
	if c.session == nil {
		logrus.WithField("msg", msg).Warn("received message, but client has no session")
		return
	}

	c.session.ReceivedMessage(c, msg)
}
