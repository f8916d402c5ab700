package state

import (
	"procurement_tracker/internal/models"
)

// Reduce is the transition function of the state store. It is pure: the
// same (state, intent) pair always yields the same next state, and the
// input state is never mutated. Unknown or invalid intents return the
// input unchanged.
func Reduce(s models.AppState, intent Intent) models.AppState {
	switch in := intent.(type) {
	case CreateOrder:
		return reduceCreateOrder(s, in)
	case DeleteOrder:
		return reduceDeleteOrder(s, in)
	case ReplaceOrder:
		return reduceReplaceOrder(s, in)
	case SetStatus:
		return reduceSetStatus(s, in)
	case MoveItem:
		return reduceMoveItem(s, in)
	case MergeOrders:
		return reduceMergeOrders(s, in)
	case SpoilItem:
		return reduceSpoil(s, in)
	case UnspoilItem:
		return reduceUnspoil(s, in)
	case UpsertOrderItem:
		return reduceUpsertItem(s, in)
	case RemoveOrderItem:
		return reduceRemoveItem(s, in)
	case AcknowledgeOrder:
		return reduceAcknowledge(s, in)
	case SetInvoiceAmount:
		return reduceSetInvoice(s, in)
	case SetPending:
		return reduceSetPending(s, in)
	case SetDragged:
		next := s.Clone()
		next.Dragged = in.Dragged
		return next
	case AdjustStock:
		return reduceAdjustStock(s, in)
	case UpdateSettings:
		next := s.Clone()
		next.Settings = in.Settings
		return next
	case ReplaceCollections:
		return reduceReplaceCollections(s, in)
	case MergeRemote:
		return reduceReplaceCollections(s, MergeReplicas(s, in.Snapshot))
	}
	return s
}

// nextSurrogateID picks a provisional id for a locally created order.
// The remote datastore assigns the durable id on first upload; until
// then the merge keeps local-only ids as they are.
func nextSurrogateID(orders []models.Order) uint {
	var max uint
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

func reduceCreateOrder(s models.AppState, in CreateOrder) models.AppState {
	store := s.StoreByID(in.StoreID)
	if store == nil || in.Now.IsZero() {
		return s
	}
	next := s.Clone()

	orderID, counter := AllocateOrderID(next.OrderIDCounters, store.Prefix, in.Now)
	next.OrderIDCounters[CounterKey(store.Prefix, in.Now)] = counter

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			continue
		}
		merged := false
		for i := range items {
			if items[i].ItemID == line.ItemID && items[i].IsSpoiled == line.IsSpoiled {
				items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, line)
		}
	}

	order := models.Order{
		ID:            nextSurrogateID(next.Orders),
		OrderID:       orderID,
		StoreID:       in.StoreID,
		SupplierID:    in.SupplierID,
		SupplierName:  in.SupplierName,
		Items:         items,
		Status:        models.StatusDispatching,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     in.Now,
		ModifiedAt:    in.Now,
	}
	if order.PaymentMethod == "" {
		if sup := next.SupplierByID(in.SupplierID); sup != nil {
			order.PaymentMethod = sup.PaymentMethod
		}
	}
	next.Orders = append(next.Orders, order)
	return next
}

func reduceDeleteOrder(s models.AppState, in DeleteOrder) models.AppState {
	if s.OrderByID(in.OrderID) == nil {
		return s
	}
	next := s.Clone()
	next.Orders = deleteOrder(next.Orders, in.OrderID)
	return next
}

func reduceReplaceOrder(s models.AppState, in ReplaceOrder) models.AppState {
	next := s.Clone()
	for i := range next.Orders {
		if next.Orders[i].ID == in.Order.ID {
			next.Orders[i] = in.Order.Clone()
			return next
		}
	}
	next.Orders = append(next.Orders, in.Order.Clone())
	return next
}

func reduceSetStatus(s models.AppState, in SetStatus) models.AppState {
	if !models.ValidStatus(in.Status) || in.Now.IsZero() {
		return s
	}
	// The status machine has no self-loops; re-issuing the current
	// status must not touch ModifiedAt or re-run side effects.
	cur := s.OrderByID(in.OrderID)
	if cur == nil || cur.Status == in.Status {
		return s
	}
	next := s.Clone()
	o := next.OrderByID(in.OrderID)
	o.Status = in.Status
	o.ModifiedAt = in.Now
	switch in.Status {
	case models.StatusOnTheWay:
		o.IsSent = true
		o.CompletedAt = nil
	case models.StatusDispatching:
		o.IsSent = false
		o.IsReceived = false
		o.CompletedAt = nil
	case models.StatusCompleted:
		o.IsReceived = true
		t := in.Now
		o.CompletedAt = &t
	}
	return next
}

func reduceMoveItem(s models.AppState, in MoveItem) models.AppState {
	if in.SourceID == in.DestID || in.Now.IsZero() {
		return s
	}
	src := s.OrderByID(in.SourceID)
	dst := s.OrderByID(in.DestID)
	if src == nil || dst == nil {
		return s
	}
	if src.Status != dst.Status && !in.ManagerMode {
		return s
	}
	if src.FindItem(in.ItemID, in.IsSpoiled) < 0 {
		return s
	}

	next := s.Clone()
	next.Dragged = nil
	src = next.OrderByID(in.SourceID)
	dst = next.OrderByID(in.DestID)

	idx := src.FindItem(in.ItemID, in.IsSpoiled)
	line := src.Items[idx]
	src.Items = append(src.Items[:idx], src.Items[idx+1:]...)
	src.ModifiedAt = in.Now

	addLine(dst, line)
	dst.ModifiedAt = in.Now

	// An emptied ON_THE_WAY order is a shell, not a draft; drop it.
	if len(src.Items) == 0 && src.Status == models.StatusOnTheWay {
		next.Orders = deleteOrder(next.Orders, in.SourceID)
	}
	return next
}

func reduceMergeOrders(s models.AppState, in MergeOrders) models.AppState {
	if in.SourceID == in.DestID || in.Now.IsZero() {
		return s
	}
	if s.OrderByID(in.SourceID) == nil || s.OrderByID(in.DestID) == nil {
		return s
	}
	next := s.Clone()
	src := next.OrderByID(in.SourceID)
	dst := next.OrderByID(in.DestID)
	for _, line := range src.Items {
		line.IsNew = false
		if i := dst.FindItem(line.ItemID, line.IsSpoiled); i >= 0 {
			dst.Items[i].Quantity += line.Quantity
		} else {
			dst.Items = append(dst.Items, line)
		}
	}
	dst.ModifiedAt = in.Now
	next.Orders = deleteOrder(next.Orders, in.SourceID)
	return next
}

func reduceSpoil(s models.AppState, in SpoilItem) models.AppState {
	o := s.OrderByID(in.OrderID)
	if o == nil || in.Quantity <= 0 || in.Now.IsZero() {
		return s
	}
	idx := o.FindItem(in.ItemID, false)
	if idx < 0 || o.Items[idx].Quantity < in.Quantity {
		return s
	}
	next := s.Clone()
	o = next.OrderByID(in.OrderID)
	idx = o.FindItem(in.ItemID, false)
	clean := &o.Items[idx]
	clean.Quantity -= in.Quantity

	if si := o.FindItem(in.ItemID, true); si >= 0 {
		o.Items[si].Quantity += in.Quantity
	} else {
		spoiled := o.Items[idx]
		spoiled.Quantity = in.Quantity
		spoiled.IsSpoiled = true
		spoiled.IsNew = false
		o.Items = append(o.Items, spoiled)
	}
	if o.Items[idx].Quantity == 0 {
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	}
	o.ModifiedAt = in.Now
	return next
}

func reduceUnspoil(s models.AppState, in UnspoilItem) models.AppState {
	o := s.OrderByID(in.OrderID)
	if o == nil || in.Quantity <= 0 || in.Now.IsZero() {
		return s
	}
	idx := o.FindItem(in.ItemID, true)
	if idx < 0 || o.Items[idx].Quantity < in.Quantity {
		return s
	}
	next := s.Clone()
	o = next.OrderByID(in.OrderID)
	idx = o.FindItem(in.ItemID, true)
	spoiled := &o.Items[idx]
	spoiled.Quantity -= in.Quantity

	if ci := o.FindItem(in.ItemID, false); ci >= 0 {
		o.Items[ci].Quantity += in.Quantity
	} else {
		clean := o.Items[idx]
		clean.Quantity = in.Quantity
		clean.IsSpoiled = false
		o.Items = append(o.Items, clean)
	}
	if o.Items[idx].Quantity == 0 {
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	}
	o.ModifiedAt = in.Now
	return next
}

func reduceUpsertItem(s models.AppState, in UpsertOrderItem) models.AppState {
	o := s.OrderByID(in.OrderID)
	if o == nil || in.Now.IsZero() {
		return s
	}
	next := s.Clone()
	o = next.OrderByID(in.OrderID)
	idx := o.FindItem(in.Line.ItemID, in.Line.IsSpoiled)
	if in.Line.Quantity <= 0 {
		if idx < 0 {
			return s
		}
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	} else if idx >= 0 {
		line := in.Line
		line.IsNew = o.Items[idx].IsNew
		o.Items[idx] = line
	} else {
		line := in.Line
		if o.Status == models.StatusOnTheWay {
			line.IsNew = true
		}
		o.Items = append(o.Items, line)
	}
	o.ModifiedAt = in.Now
	return next
}

func reduceRemoveItem(s models.AppState, in RemoveOrderItem) models.AppState {
	o := s.OrderByID(in.OrderID)
	if o == nil || in.Now.IsZero() {
		return s
	}
	idx := o.FindItem(in.ItemID, in.IsSpoiled)
	if idx < 0 {
		return s
	}
	next := s.Clone()
	o = next.OrderByID(in.OrderID)
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.ModifiedAt = in.Now
	if len(o.Items) == 0 && o.Status == models.StatusOnTheWay {
		next.Orders = deleteOrder(next.Orders, in.OrderID)
	}
	return next
}

func reduceAcknowledge(s models.AppState, in AcknowledgeOrder) models.AppState {
	if s.OrderByID(in.OrderID) == nil || in.Now.IsZero() {
		return s
	}
	next := s.Clone()
	o := next.OrderByID(in.OrderID)
	o.IsAcknowledged = true
	for i := range o.Items {
		o.Items[i].IsNew = false
	}
	o.ModifiedAt = in.Now
	return next
}

func reduceSetInvoice(s models.AppState, in SetInvoiceAmount) models.AppState {
	if s.OrderByID(in.OrderID) == nil || in.Now.IsZero() || in.Amount < 0 {
		return s
	}
	next := s.Clone()
	o := next.OrderByID(in.OrderID)
	amount := in.Amount
	o.InvoiceAmount = &amount
	o.ModifiedAt = in.Now
	return next
}

func reduceSetPending(s models.AppState, in SetPending) models.AppState {
	if s.OrderByID(in.OrderID) == nil {
		return s
	}
	next := s.Clone()
	// Pending is a local advisory lock; it never touches ModifiedAt.
	next.OrderByID(in.OrderID).Pending = in.Pending
	return next
}

func reduceAdjustStock(s models.AppState, in AdjustStock) models.AppState {
	item := s.ItemByID(in.ItemID)
	if item == nil || !item.TrackStock {
		return s
	}
	next := s.Clone()
	next.ItemByID(in.ItemID).StockQuantity += in.Delta
	return next
}

func reduceReplaceCollections(s models.AppState, in ReplaceCollections) models.AppState {
	next := s.Clone()
	next.Stores = make([]models.Store, len(in.Stores))
	copy(next.Stores, in.Stores)
	next.Suppliers = make([]models.Supplier, len(in.Suppliers))
	copy(next.Suppliers, in.Suppliers)
	next.Items = make([]models.Item, len(in.Items))
	copy(next.Items, in.Items)
	next.ItemPrices = make([]models.ItemPrice, len(in.ItemPrices))
	copy(next.ItemPrices, in.ItemPrices)
	next.Orders = make([]models.Order, len(in.Orders))
	for i, o := range in.Orders {
		next.Orders[i] = o.Clone()
	}
	return next
}

func deleteOrder(orders []models.Order, id uint) []models.Order {
	out := orders[:0]
	for _, o := range orders {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

// addLine folds a moved line into an order: quantities are summed when
// the identity key already exists, otherwise the line is appended. On
// an ON_THE_WAY destination the affected line is flagged for review.
func addLine(o *models.Order, line models.OrderItem) {
	if o.Status == models.StatusOnTheWay {
		line.IsNew = true
	}
	if i := o.FindItem(line.ItemID, line.IsSpoiled); i >= 0 {
		o.Items[i].Quantity += line.Quantity
		if o.Status == models.StatusOnTheWay {
			o.Items[i].IsNew = true
		}
	} else {
		o.Items = append(o.Items, line)
	}
}
