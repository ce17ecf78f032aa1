package remote

import (
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingListener records the public name of every method called on it.
type recordingListener struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingListener) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, name)
}

func (r *recordingListener) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

func (r *recordingListener) OnDeviceConnected()                      { r.add("onDeviceConnected") }
func (r *recordingListener) OnDeviceReady(MerchantInfo)              { r.add("onDeviceReady") }
func (r *recordingListener) OnDeviceDisconnected()                   { r.add("onDeviceDisconnected") }
func (r *recordingListener) OnDeviceActivityStart(Event)             { r.add("onDeviceActivityStart") }
func (r *recordingListener) OnDeviceActivityEnd(Event)               { r.add("onDeviceActivityEnd") }
func (r *recordingListener) OnDeviceError(DeviceErrorEvent)          { r.add("onDeviceError") }
func (r *recordingListener) OnTipAdded(TipAdded)                     { r.add("onTipAdded") }
func (r *recordingListener) OnSaleResponse(Event)                    { r.add("onSaleResponse") }
func (r *recordingListener) OnAuthResponse(Event)                    { r.add("onAuthResponse") }
func (r *recordingListener) OnPreAuthResponse(Event)                 { r.add("onPreAuthResponse") }
func (r *recordingListener) OnCapturePreAuthResponse(Event)          { r.add("onCapturePreAuthResponse") }
func (r *recordingListener) OnIncrementPreAuthResponse(Event)        { r.add("onIncrementPreAuthResponse") }
func (r *recordingListener) OnTipAdjustAuthResponse(Event)           { r.add("onTipAdjustAuthResponse") }
func (r *recordingListener) OnRefundPaymentResponse(Event)           { r.add("onRefundPaymentResponse") }
func (r *recordingListener) OnManualRefundResponse(Event)            { r.add("onManualRefundResponse") }
func (r *recordingListener) OnVoidPaymentResponse(Event)             { r.add("onVoidPaymentResponse") }
func (r *recordingListener) OnVoidPaymentRefundResponse(Event)       { r.add("onVoidPaymentRefundResponse") }
func (r *recordingListener) OnCloseoutResponse(Event)                { r.add("onCloseoutResponse") }
func (r *recordingListener) OnVaultCardResponse(Event)               { r.add("onVaultCardResponse") }
func (r *recordingListener) OnVerifySignatureRequest(Event)          { r.add("onVerifySignatureRequest") }
func (r *recordingListener) OnConfirmPaymentRequest(Event)           { r.add("onConfirmPaymentRequest") }
func (r *recordingListener) OnRetrievePendingPaymentsResponse(Event) { r.add("onRetrievePendingPaymentsResponse") }
func (r *recordingListener) OnReadCardDataResponse(Event)            { r.add("onReadCardDataResponse") }
func (r *recordingListener) OnMessageFromActivity(Event)             { r.add("onMessageFromActivity") }
func (r *recordingListener) OnCustomActivityResponse(Event)          { r.add("onCustomActivityResponse") }
func (r *recordingListener) OnRetrieveDeviceStatusResponse(Event)    { r.add("onRetrieveDeviceStatusResponse") }
func (r *recordingListener) OnResetDeviceResponse(Event)             { r.add("onResetDeviceResponse") }
func (r *recordingListener) OnRetrievePaymentResponse(Event)         { r.add("onRetrievePaymentResponse") }
func (r *recordingListener) OnRetrievePrintersResponse(Event)        { r.add("onRetrievePrintersResponse") }
func (r *recordingListener) OnPrintJobStatusResponse(Event)          { r.add("onPrintJobStatusResponse") }
func (r *recordingListener) OnPrintRefundPaymentReceipt(Event)       { r.add("onPrintRefundPaymentReceipt") }
func (r *recordingListener) OnPrintPaymentMerchantCopyReceipt(Event) { r.add("onPrintPaymentMerchantCopyReceipt") }
func (r *recordingListener) OnPrintPaymentDeclineReceipt(Event)      { r.add("onPrintPaymentDeclineReceipt") }
func (r *recordingListener) OnPrintPaymentReceipt(Event)             { r.add("onPrintPaymentReceipt") }
func (r *recordingListener) OnPrintManualRefundReceipt(Event)        { r.add("onPrintManualRefundReceipt") }
func (r *recordingListener) OnPrintManualRefundDeclineReceipt(Event) { r.add("onPrintManualRefundDeclineReceipt") }
func (r *recordingListener) OnCustomerProvidedData(Event)            { r.add("onCustomerProvidedData") }
func (r *recordingListener) OnDisplayReceiptOptionsResponse(Event)   { r.add("onDisplayReceiptOptionsResponse") }
func (r *recordingListener) OnInvalidStateTransitionResponse(Event)  { r.add("onInvalidStateTransitionResponse") }
func (r *recordingListener) OnCheckBalanceResponse(Event)            { r.add("onCheckBalanceResponse") }

// fire invokes the Notify method for n. It reports false for a notification
// it does not know.
func fire(b *Broadcaster, n Notification) bool {
	switch n {
	case NotificationOnTipAdded:
		b.NotifyOnTipAdded(150)
	case NotificationOnRefundPaymentResponse:
		b.NotifyOnRefundPaymentResponse(Event{Method: "TEST"})
	case NotificationCloseout:
		b.NotifyCloseout(Event{Method: "TEST"})
	case NotificationOnDeviceActivityStart:
		b.NotifyOnDeviceActivityStart(Event{Method: "TEST"})
	case NotificationOnDeviceActivityEnd:
		b.NotifyOnDeviceActivityEnd(Event{Method: "TEST"})
	case NotificationOnSaleResponse:
		b.NotifyOnSaleResponse(Event{Method: "TEST"})
	case NotificationOnAuthResponse:
		b.NotifyOnAuthResponse(Event{Method: "TEST"})
	case NotificationOnManualRefundResponse:
		b.NotifyOnManualRefundResponse(Event{Method: "TEST"})
	case NotificationOnVerifySignatureRequest:
		b.NotifyOnVerifySignatureRequest(Event{Method: "TEST"})
	case NotificationOnVoidPaymentResponse:
		b.NotifyOnVoidPaymentResponse(Event{Method: "TEST"})
	case NotificationOnVoidPaymentRefundResponse:
		b.NotifyOnVoidPaymentRefundResponse(Event{Method: "TEST"})
	case NotificationOnConnect:
		b.NotifyOnConnect()
	case NotificationOnDisconnect:
		b.NotifyOnDisconnect("closed")
	case NotificationOnReady:
		b.NotifyOnReady(MerchantInfo{})
	case NotificationOnTipAdjustAuthResponse:
		b.NotifyOnTipAdjustAuthResponse(Event{Method: "TEST"})
	case NotificationOnVaultCardResponse:
		b.NotifyOnVaultCardResponse(Event{Method: "TEST"})
	case NotificationOnPreAuthResponse:
		b.NotifyOnPreAuthResponse(Event{Method: "TEST"})
	case NotificationOnCapturePreAuth:
		b.NotifyOnCapturePreAuth(Event{Method: "TEST"})
	case NotificationOnIncrementPreAuthResponse:
		b.NotifyOnIncrementPreAuthResponse(Event{Method: "TEST"})
	case NotificationOnDeviceError:
		b.NotifyOnDeviceError(DeviceErrorEvent{Type: ErrorTypeCommunication})
	case NotificationOnPrintRefundPaymentReceipt:
		b.NotifyOnPrintRefundPaymentReceipt(Event{Method: "TEST"})
	case NotificationOnPrintPaymentMerchantCopyReceipt:
		b.NotifyOnPrintPaymentMerchantCopyReceipt(Event{Method: "TEST"})
	case NotificationOnPrintPaymentDeclineReceipt:
		b.NotifyOnPrintPaymentDeclineReceipt(Event{Method: "TEST"})
	case NotificationOnPrintPaymentReceipt:
		b.NotifyOnPrintPaymentReceipt(Event{Method: "TEST"})
	case NotificationOnPrintCreditReceipt:
		b.NotifyOnPrintCreditReceipt(Event{Method: "TEST"})
	case NotificationOnPrintCreditDeclineReceipt:
		b.NotifyOnPrintCreditDeclineReceipt(Event{Method: "TEST"})
	case NotificationOnConfirmPaymentRequest:
		b.NotifyOnConfirmPaymentRequest(Event{Method: "TEST"})
	case NotificationOnRetrievePendingPaymentResponse:
		b.NotifyOnRetrievePendingPaymentResponse(Event{Method: "TEST"})
	case NotificationOnReadCardDataResponse:
		b.NotifyOnReadCardDataResponse(Event{Method: "TEST"})
	case NotificationOnActivityMessage:
		b.NotifyOnActivityMessage(Event{Method: "TEST"})
	case NotificationOnActivityResponse:
		b.NotifyOnActivityResponse(Event{Method: "TEST"})
	case NotificationOnRetrieveDeviceStatusResponse:
		b.NotifyOnRetrieveDeviceStatusResponse(Event{Method: "TEST"})
	case NotificationOnResetDeviceResponse:
		b.NotifyOnResetDeviceResponse(Event{Method: "TEST"})
	case NotificationOnRetrievePaymentResponse:
		b.NotifyOnRetrievePaymentResponse(Event{Method: "TEST"})
	case NotificationOnRetrievePrintersResponse:
		b.NotifyOnRetrievePrintersResponse(Event{Method: "TEST"})
	case NotificationOnPrintJobStatusResponse:
		b.NotifyOnPrintJobStatusResponse(Event{Method: "TEST"})
	case NotificationOnCustomerProvidedDataEvent:
		b.NotifyOnCustomerProvidedDataEvent(Event{Method: "TEST"})
	case NotificationOnDisplayReceiptOptionsResponse:
		b.NotifyOnDisplayReceiptOptionsResponse(Event{Method: "TEST"})
	case NotificationOnInvalidStateTransitionResponse:
		b.NotifyOnInvalidStateTransitionResponse(Event{Method: "TEST"})
	case NotificationOnSignatureCollected:
		b.NotifyOnSignatureCollected(Event{Method: "TEST"})
	case NotificationOnCheckBalanceResponse:
		b.NotifyOnCheckBalanceResponse(Event{Method: "TEST"})
	case NotificationOnTipResponse:
		b.NotifyOnTipResponse(Event{Method: "TEST"})
	default:
		return false
	}
	return true
}

type panicListener struct {
	BaseListener
}

func (*panicListener) OnDeviceConnected() {
	panic("listener bug")
}

type tagListener struct {
	BaseListener
	tag  string
	seen *[]string
}

func (l *tagListener) OnDeviceConnected() {
	*l.seen = append(*l.seen, l.tag)
}

func TestEveryNotificationReachesItsPublicMethod(t *testing.T) {
	if got := len(Notifications()); got != 42 {
		t.Fatalf("notifications = %d, want 42", got)
	}

	for _, n := range Notifications() {
		t.Run(n.String(), func(t *testing.T) {
			b := NewBroadcaster(WithLogger(zap.NewNop()))
			r := &recordingListener{}
			b.Push(r)

			if !fire(b, n) {
				t.Fatalf("no Notify method for %v", n)
			}

			var want []string
			if n.Delivered() {
				want = []string{n.PublicName()}
			}
			if got := r.got(); !reflect.DeepEqual(got, want) {
				t.Fatalf("calls = %v, want %v", got, want)
			}
		})
	}
}

func TestPublicNamesCoverListener(t *testing.T) {
	public := make(map[string]bool)
	for _, n := range Notifications() {
		if n.Delivered() {
			public[n.PublicName()] = true
		}
	}

	listener := reflect.TypeOf((*Listener)(nil)).Elem()
	if listener.NumMethod() != 40 {
		t.Fatalf("Listener has %d methods, want 40", listener.NumMethod())
	}
	for i := 0; i < listener.NumMethod(); i++ {
		name := listener.Method(i).Name
		if !public["o"+name[1:]] {
			t.Errorf("no notification is delivered to %s", name)
		}
	}
}

func TestNotificationRenames(t *testing.T) {
	tests := []struct {
		internal string
		public   string
	}{
		{"notifyCloseout", "onCloseoutResponse"},
		{"notifyOnConnect", "onDeviceConnected"},
		{"notifyOnDisconnect", "onDeviceDisconnected"},
		{"notifyOnReady", "onDeviceReady"},
		{"notifyOnVaultCardRespose", "onVaultCardResponse"},
		{"notifyOnCapturePreAuth", "onCapturePreAuthResponse"},
		{"notifyOnPrintCreditReceipt", "onPrintManualRefundReceipt"},
		{"notifyOnPrintCreditDeclineReceipt", "onPrintManualRefundDeclineReceipt"},
		{"notifyOnRetrievePendingPaymentResponse", "onRetrievePendingPaymentsResponse"},
		{"notifyOnActivityMessage", "onMessageFromActivity"},
		{"notifyOnActivityResponse", "onCustomActivityResponse"},
		{"notifyOnCustomerProvidedDataEvent", "onCustomerProvidedData"},
		{"notifyOnSignatureCollected", ""},
		{"notifyOnTipResponse", ""},
	}

	for _, tt := range tests {
		n, ok := LookupNotification(tt.internal)
		if !ok {
			t.Errorf("LookupNotification(%q) found nothing", tt.internal)
			continue
		}
		if got := n.PublicName(); got != tt.public {
			t.Errorf("%s.PublicName() = %q, want %q", tt.internal, got, tt.public)
		}
		if got := n.String(); got != tt.internal {
			t.Errorf("String() = %q, want %q", got, tt.internal)
		}
	}

	if _, ok := LookupNotification("notifyOnNothing"); ok {
		t.Error("LookupNotification found an unknown name")
	}
}

func TestPanickingListenerDoesNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	b := NewBroadcaster(WithLogger(zap.New(core)))
	first, last := &recordingListener{}, &recordingListener{}
	b.Push(first, &panicListener{}, last)

	b.NotifyOnConnect()
	b.NotifyOnSaleResponse(Event{Method: "SALE_RESPONSE"})

	want := []string{"onDeviceConnected", "onSaleResponse"}
	if got := first.got(); !reflect.DeepEqual(got, want) {
		t.Fatalf("first listener calls = %v, want %v", got, want)
	}
	if got := last.got(); !reflect.DeepEqual(got, want) {
		t.Fatalf("last listener calls = %v, want %v", got, want)
	}

	if logs.Len() != 1 {
		t.Fatalf("logged errors = %d, want 1", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["notification"] != "notifyOnConnect" || fields["method"] != "onDeviceConnected" {
		t.Fatalf("log fields = %v", fields)
	}
}

func TestDeliveryFollowsRegistrationOrder(t *testing.T) {
	var seen []string
	b := NewBroadcaster()
	for _, tag := range []string{"a", "b", "c"} {
		b.Push(&tagListener{tag: tag, seen: &seen})
	}

	b.NotifyOnConnect()
	b.NotifyOnConnect()

	want := []string{"a", "b", "c", "a", "b", "c"}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("order = %v, want %v", seen, want)
	}
}

func TestPushRemoveRoundTrip(t *testing.T) {
	b := NewBroadcaster()
	x, y := &recordingListener{}, &recordingListener{}
	b.Push(x, y)
	before := b.Listeners()

	z := &recordingListener{}
	if n := b.Push(z); n != 3 {
		t.Fatalf("Push returned %d, want 3", n)
	}
	if got := b.IndexOf(z); got != 2 {
		t.Fatalf("IndexOf = %d, want 2", got)
	}
	if !b.Remove(z) {
		t.Fatal("Remove reported nothing removed")
	}

	after := b.Listeners()
	if len(after) != len(before) {
		t.Fatalf("listeners = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("listener %d changed identity", i)
		}
	}
	if b.IndexOf(z) != -1 || b.Remove(z) {
		t.Fatal("removed listener is still registered")
	}
}

func TestRemoveDropsFirstRegistration(t *testing.T) {
	b := NewBroadcaster()
	x, y := &recordingListener{}, &recordingListener{}
	b.Push(x, y, x)

	b.Remove(x)
	if got := b.IndexOf(x); got != 1 {
		t.Fatalf("IndexOf after Remove = %d, want 1", got)
	}

	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("Len after Clear = %d", b.Len())
	}
	b.NotifyOnConnect()
	if len(x.got()) != 0 || len(y.got()) != 0 {
		t.Fatal("cleared listeners were notified")
	}
}
