package dto

// MaxPageLimit tope de filas por página en cualquier listado.
const MaxPageLimit = 100

// PageRequest paginación por query string.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica fallback cuando el límite es nulo o negativo y recorta al tope.
// Con clampToFallback, un límite por encima del tope vuelve al fallback en vez de al tope.
func (p *PageRequest) Normalize(fallback int, clampToFallback bool) {
	switch {
	case p.Limit <= 0:
		p.Limit = fallback
	case p.Limit > MaxPageLimit && clampToFallback:
		p.Limit = fallback
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
