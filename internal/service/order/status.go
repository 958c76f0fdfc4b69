package order

import (
	"github.com/ANJAN672/Ecom/internal/models"
)

// statusTransitions is the allowed-next set per status. Delivered and
// Cancelled are terminal.
var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:        {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:      {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:        {models.OrderStatusOutForDelivery},
	models.OrderStatusOutForDelivery: {models.OrderStatusDelivered},
	models.OrderStatusDelivered:      {},
	models.OrderStatusCancelled:      {},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
