package entity

import "time"

// Site representa un objeto de instalación (la casa o edificio del cliente)
// al que se despliegan los lotes.
type Site struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
