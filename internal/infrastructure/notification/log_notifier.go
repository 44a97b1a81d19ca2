// Package notification implementa el puerto inventory.Notifier.
package notification

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

var _ inventory.Notifier = (*LogNotifier)(nil)

// LogNotifier escribe cada notificación en el log. Se usa cuando no hay broker configurado.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Component("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, category, referenceID, message string) error {
	n.log.Warn().
		Str("category", category).
		Str("reference_id", referenceID).
		Msg(message)
	return nil
}
