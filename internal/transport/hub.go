package transport

import (
	"net/http"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Hub is a broadcast endpoint for readings, mounted on a Server
type Hub interface {
	http.Handler
	Name() string
	Broadcast(reading models.Reading) error
	ClientCount() int
	Close()
}
