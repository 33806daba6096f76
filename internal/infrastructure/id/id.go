package id

import "github.com/google/uuid"

// Generator hands out correlation ids for interactions and HTTP requests.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

func NewUUIDGenerator() Generator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.NewString() }
