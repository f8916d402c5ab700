package state

import (
	"reflect"
	"testing"
	"time"

	"procurement_tracker/internal/models"
)

var testTime = time.Date(2024, time.August, 1, 10, 30, 0, 0, time.UTC)

func baseState() models.AppState {
	parent := uint(1)
	return models.AppState{
		Stores: []models.Store{
			{ID: 1, Name: "Central", Prefix: "CV2"},
			{ID: 2, Name: "North", Prefix: "NR1"},
		},
		Suppliers: []models.Supplier{
			{ID: 1, Name: "Fresh Farm", Channel: "628111", PaymentMethod: "transfer"},
		},
		Items: []models.Item{
			{ID: 1, Name: "Milk", Unit: "l", SupplierID: 1},
			{ID: 2, Name: "Milk (bottled)", ParentID: &parent, IsVariant: true, TrackStock: true, StockQuantity: 10},
		},
		ItemPrices: []models.ItemPrice{
			{ID: 1, ItemID: 1, SupplierID: 1, Unit: "l", Price: 2.5, IsMaster: true},
		},
		Orders:          []models.Order{},
		OrderIDCounters: map[string]int{},
	}
}

func createOrder(t *testing.T, s models.AppState, items []models.OrderItem) models.AppState {
	t.Helper()
	next := Reduce(s, CreateOrder{
		StoreID:      1,
		SupplierID:   1,
		SupplierName: "Fresh Farm",
		Items:        items,
		Now:          testTime,
	})
	if len(next.Orders) != len(s.Orders)+1 {
		t.Fatalf("order not created")
	}
	return next
}

func TestReduceIsPure(t *testing.T) {
	s := baseState()
	intent := CreateOrder{StoreID: 1, SupplierID: 1, SupplierName: "Fresh Farm",
		Items: []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}}, Now: testTime}

	before := s.Clone()
	first := Reduce(s, intent)
	second := Reduce(s, intent)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different outputs")
	}
	if !reflect.DeepEqual(s, before) {
		t.Fatalf("reducer mutated its input state")
	}
}

func TestUnknownOrInvalidIntentIsNoOp(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})

	cases := []struct {
		name   string
		intent Intent
	}{
		{"missing store", CreateOrder{StoreID: 99, SupplierID: 1, Now: testTime}},
		{"missing order", SetStatus{OrderID: 99, Status: models.StatusOnTheWay, Now: testTime}},
		{"bad status", SetStatus{OrderID: 1, Status: "SHIPPED", Now: testTime}},
		{"zero time", SetStatus{OrderID: 1, Status: models.StatusOnTheWay}},
		{"same status", SetStatus{OrderID: 1, Status: models.StatusDispatching, Now: testTime}},
		{"spoil too much", SpoilItem{OrderID: 1, ItemID: 1, Quantity: 6, Now: testTime}},
		{"spoil negative", SpoilItem{OrderID: 1, ItemID: 1, Quantity: -1, Now: testTime}},
		{"move to self", MoveItem{SourceID: 1, DestID: 1, ItemID: 1, Now: testTime}},
	}
	for _, tc := range cases {
		next := Reduce(s, tc.intent)
		if !reflect.DeepEqual(s, next) {
			t.Fatalf("%s: expected no-op", tc.name)
		}
	}
}

func TestOrderIDAllocationSequence(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, nil)
	s = createOrder(t, s, nil)

	if got := s.Orders[0].OrderID; got != "CV20108-01" {
		t.Fatalf("first id: got %q, want CV20108-01", got)
	}
	if got := s.Orders[1].OrderID; got != "CV20108-02" {
		t.Fatalf("second id: got %q, want CV20108-02", got)
	}
	if s.OrderIDCounters["CV2:0108"] != 2 {
		t.Fatalf("counter: got %d, want 2", s.OrderIDCounters["CV2:0108"])
	}
}

func TestOrderIDCounterResetsNextDay(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, nil)

	nextDay := testTime.AddDate(0, 0, 1)
	s = Reduce(s, CreateOrder{StoreID: 1, SupplierID: 1, SupplierName: "Fresh Farm", Now: nextDay})

	if got := s.Orders[1].OrderID; got != "CV20208-01" {
		t.Fatalf("new day should restart at 01, got %q", got)
	}
	// The previous day's counter is untouched.
	if s.OrderIDCounters["CV2:0108"] != 1 {
		t.Fatalf("previous day counter changed")
	}
}

func TestOrderIDCountersPerStore(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, nil)
	s = Reduce(s, CreateOrder{StoreID: 2, SupplierID: 1, SupplierName: "Fresh Farm", Now: testTime})

	if got := s.Orders[1].OrderID; got != "NR10108-01" {
		t.Fatalf("stores must not share counters, got %q", got)
	}
}

func TestCreateOrderInheritsSupplierPayment(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, nil)
	if s.Orders[0].PaymentMethod != "transfer" {
		t.Fatalf("payment method not inherited from supplier")
	}
	if s.Orders[0].Status != models.StatusDispatching {
		t.Fatalf("new order must start in DISPATCHING")
	}
}

func TestStatusTransitionSideEffects(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})

	s = Reduce(s, SetStatus{OrderID: 1, Status: models.StatusOnTheWay, Now: testTime})
	o := s.OrderByID(1)
	if !o.IsSent || o.CompletedAt != nil {
		t.Fatalf("ON_THE_WAY: IsSent=%v CompletedAt=%v", o.IsSent, o.CompletedAt)
	}

	later := testTime.Add(time.Hour)
	s = Reduce(s, SetStatus{OrderID: 1, Status: models.StatusCompleted, Now: later})
	o = s.OrderByID(1)
	if !o.IsReceived || o.CompletedAt == nil || !o.CompletedAt.Equal(later) {
		t.Fatalf("COMPLETED side effects missing")
	}

	s = Reduce(s, SetStatus{OrderID: 1, Status: models.StatusDispatching, Now: later})
	o = s.OrderByID(1)
	if o.IsSent || o.IsReceived || o.CompletedAt != nil {
		t.Fatalf("DISPATCHING must clear sent/received/completedAt")
	}
}

func TestSpoilSplitsLine(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})

	s = Reduce(s, SpoilItem{OrderID: 1, ItemID: 1, Quantity: 2, Now: testTime})
	o := s.OrderByID(1)
	if len(o.Items) != 2 {
		t.Fatalf("expected clean+spoiled lines, got %d", len(o.Items))
	}
	clean := o.Items[o.FindItem(1, false)]
	spoiled := o.Items[o.FindItem(1, true)]
	if clean.Quantity != 3 || spoiled.Quantity != 2 {
		t.Fatalf("got clean=%g spoiled=%g, want 3/2", clean.Quantity, spoiled.Quantity)
	}
}

func TestSpoilWholeLineRemovesClean(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})

	s = Reduce(s, SpoilItem{OrderID: 1, ItemID: 1, Quantity: 5, Now: testTime})
	o := s.OrderByID(1)
	if len(o.Items) != 1 || !o.Items[0].IsSpoiled || o.Items[0].Quantity != 5 {
		t.Fatalf("zero-quantity clean line must be removed, got %+v", o.Items)
	}
}

func TestUnspoilReversesSpoil(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = Reduce(s, SpoilItem{OrderID: 1, ItemID: 1, Quantity: 2, Now: testTime})
	s = Reduce(s, UnspoilItem{OrderID: 1, ItemID: 1, Quantity: 2, Now: testTime})

	o := s.OrderByID(1)
	if len(o.Items) != 1 || o.Items[0].IsSpoiled || o.Items[0].Quantity != 5 {
		t.Fatalf("unspoil did not restore the clean line, got %+v", o.Items)
	}
}

func TestLinesStayUniquePerItemAndSpoilFlag(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{
		{ItemID: 1, Name: "Milk", Quantity: 2},
		{ItemID: 1, Name: "Milk", Quantity: 3}, // duplicate key on input
	})
	s = Reduce(s, SpoilItem{OrderID: 1, ItemID: 1, Quantity: 1, Now: testTime})
	s = Reduce(s, SpoilItem{OrderID: 1, ItemID: 1, Quantity: 1, Now: testTime})

	o := s.OrderByID(1)
	seen := map[[2]interface{}]bool{}
	for _, line := range o.Items {
		key := [2]interface{}{line.ItemID, line.IsSpoiled}
		if seen[key] {
			t.Fatalf("duplicate identity key %v in %+v", key, o.Items)
		}
		seen[key] = true
	}
	if o.TotalQuantity(1) != 5 {
		t.Fatalf("total quantity changed: %g", o.TotalQuantity(1))
	}
}

func TestMoveItemConservesQuantity(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 2}})

	s = Reduce(s, MoveItem{SourceID: 1, DestID: 2, ItemID: 1, Now: testTime})

	src := s.OrderByID(1)
	dst := s.OrderByID(2)
	var total float64
	if src != nil {
		total += src.TotalQuantity(1)
	}
	total += dst.TotalQuantity(1)
	if total != 7 {
		t.Fatalf("quantity not conserved: %g", total)
	}
	if dst.TotalQuantity(1) != 7 {
		t.Fatalf("destination should have merged to 7, got %g", dst.TotalQuantity(1))
	}
}

func TestMoveLastItemDeletesOnTheWaySource(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}}) // order 1
	s = createOrder(t, s, nil)                                                        // order 2
	s = Reduce(s, SetStatus{OrderID: 1, Status: models.StatusOnTheWay, Now: testTime})
	s = Reduce(s, SetStatus{OrderID: 2, Status: models.StatusOnTheWay, Now: testTime})

	s = Reduce(s, MoveItem{SourceID: 1, DestID: 2, ItemID: 1, Now: testTime})

	if s.OrderByID(1) != nil {
		t.Fatalf("emptied ON_THE_WAY source must be deleted")
	}
	dst := s.OrderByID(2)
	if len(dst.Items) != 1 || dst.Items[0].Quantity != 5 {
		t.Fatalf("destination items wrong: %+v", dst.Items)
	}
	if !dst.Items[0].IsNew {
		t.Fatalf("line moved into ON_THE_WAY order must be flagged IsNew")
	}
}

func TestMoveLastItemKeepsDispatchingDraft(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = createOrder(t, s, nil)

	s = Reduce(s, MoveItem{SourceID: 1, DestID: 2, ItemID: 1, Now: testTime})

	src := s.OrderByID(1)
	if src == nil || len(src.Items) != 0 {
		t.Fatalf("empty DISPATCHING order is a draft and must survive")
	}
}

func TestMoveRejectsStatusMismatchUnlessManager(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = createOrder(t, s, nil)
	s = Reduce(s, SetStatus{OrderID: 2, Status: models.StatusOnTheWay, Now: testTime})

	blocked := Reduce(s, MoveItem{SourceID: 1, DestID: 2, ItemID: 1, Now: testTime})
	if !reflect.DeepEqual(s, blocked) {
		t.Fatalf("cross-status move without manager mode must be rejected")
	}

	allowed := Reduce(s, MoveItem{SourceID: 1, DestID: 2, ItemID: 1, ManagerMode: true, Now: testTime})
	if allowed.OrderByID(2).TotalQuantity(1) != 5 {
		t.Fatalf("manager mode move did not apply")
	}
}

func TestMergeOrdersFoldsAndDeletesSource(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 2}, {ItemID: 2, Name: "Bottled", Quantity: 1}})

	s = Reduce(s, MergeOrders{SourceID: 2, DestID: 1, Now: testTime})

	if s.OrderByID(2) != nil {
		t.Fatalf("merge must delete the source order")
	}
	dst := s.OrderByID(1)
	if dst.TotalQuantity(1) != 7 || dst.TotalQuantity(2) != 1 {
		t.Fatalf("merge quantities wrong: %+v", dst.Items)
	}
}

func TestUpsertItemRemovesOnZeroQuantity(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})

	s = Reduce(s, UpsertOrderItem{OrderID: 1, Line: models.OrderItem{ItemID: 1, Quantity: 0}, Now: testTime})
	if len(s.OrderByID(1).Items) != 0 {
		t.Fatalf("zero quantity line must be removed, not kept")
	}
}

func TestAcknowledgeClearsIsNew(t *testing.T) {
	s := baseState()
	s = createOrder(t, s, []models.OrderItem{{ItemID: 1, Name: "Milk", Quantity: 5}})
	s = Reduce(s, SetStatus{OrderID: 1, Status: models.StatusOnTheWay, Now: testTime})
	s = Reduce(s, UpsertOrderItem{OrderID: 1, Line: models.OrderItem{ItemID: 2, Name: "Bottled", Quantity: 1}, Now: testTime})

	if !s.OrderByID(1).Items[1].IsNew {
		t.Fatalf("line added after dispatch must be IsNew")
	}
	s = Reduce(s, AcknowledgeOrder{OrderID: 1, Now: testTime})
	o := s.OrderByID(1)
	if !o.IsAcknowledged || o.Items[1].IsNew {
		t.Fatalf("acknowledge must set the flag and clear IsNew lines")
	}
}

func TestAdjustStockOnlyForTrackedItems(t *testing.T) {
	s := baseState()
	s = Reduce(s, AdjustStock{ItemID: 2, Delta: 5})
	if got := s.ItemByID(2).StockQuantity; got != 15 {
		t.Fatalf("stock: got %g, want 15", got)
	}

	before := s.Clone()
	s = Reduce(s, AdjustStock{ItemID: 1, Delta: 5})
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("untracked item stock must not change")
	}
}
