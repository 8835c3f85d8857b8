package uuidgen

import (
	"github.com/google/uuid"

	"github.com/yamdb/reviews-api/internal/core/ports"
)

// Generator mints random (v4) UUID strings.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) NewID() string {
	return uuid.New().String()
}

var _ ports.IDGenerator = (*Generator)(nil)
