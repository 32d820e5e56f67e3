package mappers

import (
	"fmt"

	"github.com/orris-inc/zlpay/internal/domain/order"
	"github.com/orris-inc/zlpay/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) *models.OrderModel {
	model := &models.OrderModel{
		ID:            o.ID(),
		OrderKey:      o.OrderKey(),
		Status:        o.Status().String(),
		Total:         o.Total(),
		Currency:      o.Currency(),
		PaymentMethod: o.PaymentMethod(),
		CustomerUser:  o.CustomerUser(),
		TransactionID: o.TransactionID(),
		PaidAt:        o.PaidAt(),
		Version:       o.Version(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}

	for _, item := range o.Items() {
		model.Items = append(model.Items, models.OrderItemModel{
			ID:        item.ID,
			OrderID:   o.ID(),
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}

	return model
}

func OrderToDomain(model *models.OrderModel) (*order.Order, error) {
	status := order.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", model.Status)
	}

	items := make([]order.Item, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, order.Item{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}

	return order.ReconstructOrder(
		model.ID, model.OrderKey, status, model.Total,
		model.Currency, model.PaymentMethod, model.CustomerUser,
		items, model.TransactionID, model.PaidAt, model.Version,
		model.CreatedAt, model.UpdatedAt,
	), nil
}

func NoteToDomain(model *models.OrderNoteModel) *order.Note {
	return &order.Note{
		ID:        model.ID,
		OrderID:   model.OrderID,
		Text:      model.Note,
		CreatedAt: model.CreatedAt,
	}
}

func RefundToModel(r *order.Refund) *models.RefundModel {
	model := &models.RefundModel{
		ID:               r.ID,
		OrderID:          r.OrderID,
		Amount:           r.Amount,
		Reason:           r.Reason,
		MerchantRefundID: r.MerchantRefund,
		RemoteRefundID:   r.RemoteRefundID,
		CreatedAt:        r.CreatedAt,
	}
	for _, line := range r.Lines {
		model.Lines = append(model.Lines, models.RefundLineModel{
			ItemID:   line.ItemID,
			Name:     line.Name,
			Subtotal: line.Subtotal,
		})
	}
	return model
}

func RefundToDomain(model *models.RefundModel) *order.Refund {
	r := &order.Refund{
		ID:             model.ID,
		OrderID:        model.OrderID,
		Amount:         model.Amount,
		Reason:         model.Reason,
		MerchantRefund: model.MerchantRefundID,
		RemoteRefundID: model.RemoteRefundID,
		CreatedAt:      model.CreatedAt,
	}
	for _, line := range model.Lines {
		r.Lines = append(r.Lines, order.RefundLine{
			ItemID:   line.ItemID,
			Name:     line.Name,
			Subtotal: line.Subtotal,
		})
	}
	return r
}

func ProductToModel(p *order.Product) *models.ProductModel {
	return &models.ProductModel{
		ID:            p.ID,
		Name:          p.Name,
		StockQuantity: p.StockQuantity,
	}
}

func ProductToDomain(model *models.ProductModel) *order.Product {
	return &order.Product{
		ID:            model.ID,
		Name:          model.Name,
		StockQuantity: model.StockQuantity,
	}
}
