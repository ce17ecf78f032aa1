package remote

import "go.uber.org/zap"

// NotifyOnTipAdded reports a tip of tipAmount minor units entered on the device.
func (b *Broadcaster) NotifyOnTipAdded(tipAmount int64) {
	tip := TipAdded{TipAmount: tipAmount}
	b.broadcast(NotificationOnTipAdded, func(l Listener) { l.OnTipAdded(tip) })
}

func (b *Broadcaster) NotifyOnRefundPaymentResponse(e Event) {
	b.broadcast(NotificationOnRefundPaymentResponse, func(l Listener) { l.OnRefundPaymentResponse(e) })
}

func (b *Broadcaster) NotifyCloseout(e Event) {
	b.broadcast(NotificationCloseout, func(l Listener) { l.OnCloseoutResponse(e) })
}

func (b *Broadcaster) NotifyOnDeviceActivityStart(e Event) {
	b.broadcast(NotificationOnDeviceActivityStart, func(l Listener) { l.OnDeviceActivityStart(e) })
}

func (b *Broadcaster) NotifyOnDeviceActivityEnd(e Event) {
	b.broadcast(NotificationOnDeviceActivityEnd, func(l Listener) { l.OnDeviceActivityEnd(e) })
}

func (b *Broadcaster) NotifyOnSaleResponse(e Event) {
	b.broadcast(NotificationOnSaleResponse, func(l Listener) { l.OnSaleResponse(e) })
}

func (b *Broadcaster) NotifyOnAuthResponse(e Event) {
	b.broadcast(NotificationOnAuthResponse, func(l Listener) { l.OnAuthResponse(e) })
}

func (b *Broadcaster) NotifyOnManualRefundResponse(e Event) {
	b.broadcast(NotificationOnManualRefundResponse, func(l Listener) { l.OnManualRefundResponse(e) })
}

func (b *Broadcaster) NotifyOnVerifySignatureRequest(e Event) {
	b.broadcast(NotificationOnVerifySignatureRequest, func(l Listener) { l.OnVerifySignatureRequest(e) })
}

func (b *Broadcaster) NotifyOnVoidPaymentResponse(e Event) {
	b.broadcast(NotificationOnVoidPaymentResponse, func(l Listener) { l.OnVoidPaymentResponse(e) })
}

func (b *Broadcaster) NotifyOnVoidPaymentRefundResponse(e Event) {
	b.broadcast(NotificationOnVoidPaymentRefundResponse, func(l Listener) { l.OnVoidPaymentRefundResponse(e) })
}

func (b *Broadcaster) NotifyOnConnect() {
	b.broadcast(NotificationOnConnect, func(l Listener) { l.OnDeviceConnected() })
}

// NotifyOnDisconnect tells listeners the device connection was lost. The
// message is only logged; OnDeviceDisconnected carries no arguments.
func (b *Broadcaster) NotifyOnDisconnect(message string) {
	if message != "" {
		b.logger.Debug("device disconnected", zap.String("message", message))
	}
	b.broadcast(NotificationOnDisconnect, func(l Listener) { l.OnDeviceDisconnected() })
}

func (b *Broadcaster) NotifyOnReady(info MerchantInfo) {
	b.broadcast(NotificationOnReady, func(l Listener) { l.OnDeviceReady(info) })
}

func (b *Broadcaster) NotifyOnTipAdjustAuthResponse(e Event) {
	b.broadcast(NotificationOnTipAdjustAuthResponse, func(l Listener) { l.OnTipAdjustAuthResponse(e) })
}

func (b *Broadcaster) NotifyOnVaultCardResponse(e Event) {
	b.broadcast(NotificationOnVaultCardResponse, func(l Listener) { l.OnVaultCardResponse(e) })
}

func (b *Broadcaster) NotifyOnPreAuthResponse(e Event) {
	b.broadcast(NotificationOnPreAuthResponse, func(l Listener) { l.OnPreAuthResponse(e) })
}

func (b *Broadcaster) NotifyOnCapturePreAuth(e Event) {
	b.broadcast(NotificationOnCapturePreAuth, func(l Listener) { l.OnCapturePreAuthResponse(e) })
}

func (b *Broadcaster) NotifyOnIncrementPreAuthResponse(e Event) {
	b.broadcast(NotificationOnIncrementPreAuthResponse, func(l Listener) { l.OnIncrementPreAuthResponse(e) })
}

func (b *Broadcaster) NotifyOnDeviceError(e DeviceErrorEvent) {
	b.broadcast(NotificationOnDeviceError, func(l Listener) { l.OnDeviceError(e) })
}

func (b *Broadcaster) NotifyOnPrintRefundPaymentReceipt(e Event) {
	b.broadcast(NotificationOnPrintRefundPaymentReceipt, func(l Listener) { l.OnPrintRefundPaymentReceipt(e) })
}

func (b *Broadcaster) NotifyOnPrintPaymentMerchantCopyReceipt(e Event) {
	b.broadcast(NotificationOnPrintPaymentMerchantCopyReceipt, func(l Listener) { l.OnPrintPaymentMerchantCopyReceipt(e) })
}

func (b *Broadcaster) NotifyOnPrintPaymentDeclineReceipt(e Event) {
	b.broadcast(NotificationOnPrintPaymentDeclineReceipt, func(l Listener) { l.OnPrintPaymentDeclineReceipt(e) })
}

func (b *Broadcaster) NotifyOnPrintPaymentReceipt(e Event) {
	b.broadcast(NotificationOnPrintPaymentReceipt, func(l Listener) { l.OnPrintPaymentReceipt(e) })
}

// NotifyOnPrintCreditReceipt is delivered as OnPrintManualRefundReceipt.
func (b *Broadcaster) NotifyOnPrintCreditReceipt(e Event) {
	b.broadcast(NotificationOnPrintCreditReceipt, func(l Listener) { l.OnPrintManualRefundReceipt(e) })
}

// NotifyOnPrintCreditDeclineReceipt is delivered as
// OnPrintManualRefundDeclineReceipt.
func (b *Broadcaster) NotifyOnPrintCreditDeclineReceipt(e Event) {
	b.broadcast(NotificationOnPrintCreditDeclineReceipt, func(l Listener) { l.OnPrintManualRefundDeclineReceipt(e) })
}

func (b *Broadcaster) NotifyOnConfirmPaymentRequest(e Event) {
	b.broadcast(NotificationOnConfirmPaymentRequest, func(l Listener) { l.OnConfirmPaymentRequest(e) })
}

func (b *Broadcaster) NotifyOnRetrievePendingPaymentResponse(e Event) {
	b.broadcast(NotificationOnRetrievePendingPaymentResponse, func(l Listener) { l.OnRetrievePendingPaymentsResponse(e) })
}

func (b *Broadcaster) NotifyOnReadCardDataResponse(e Event) {
	b.broadcast(NotificationOnReadCardDataResponse, func(l Listener) { l.OnReadCardDataResponse(e) })
}

// NotifyOnActivityMessage is delivered as OnMessageFromActivity.
func (b *Broadcaster) NotifyOnActivityMessage(e Event) {
	b.broadcast(NotificationOnActivityMessage, func(l Listener) { l.OnMessageFromActivity(e) })
}

// NotifyOnActivityResponse is delivered as OnCustomActivityResponse.
func (b *Broadcaster) NotifyOnActivityResponse(e Event) {
	b.broadcast(NotificationOnActivityResponse, func(l Listener) { l.OnCustomActivityResponse(e) })
}

func (b *Broadcaster) NotifyOnRetrieveDeviceStatusResponse(e Event) {
	b.broadcast(NotificationOnRetrieveDeviceStatusResponse, func(l Listener) { l.OnRetrieveDeviceStatusResponse(e) })
}

func (b *Broadcaster) NotifyOnResetDeviceResponse(e Event) {
	b.broadcast(NotificationOnResetDeviceResponse, func(l Listener) { l.OnResetDeviceResponse(e) })
}

func (b *Broadcaster) NotifyOnRetrievePaymentResponse(e Event) {
	b.broadcast(NotificationOnRetrievePaymentResponse, func(l Listener) { l.OnRetrievePaymentResponse(e) })
}

func (b *Broadcaster) NotifyOnRetrievePrintersResponse(e Event) {
	b.broadcast(NotificationOnRetrievePrintersResponse, func(l Listener) { l.OnRetrievePrintersResponse(e) })
}

func (b *Broadcaster) NotifyOnPrintJobStatusResponse(e Event) {
	b.broadcast(NotificationOnPrintJobStatusResponse, func(l Listener) { l.OnPrintJobStatusResponse(e) })
}

func (b *Broadcaster) NotifyOnCustomerProvidedDataEvent(e Event) {
	b.broadcast(NotificationOnCustomerProvidedDataEvent, func(l Listener) { l.OnCustomerProvidedData(e) })
}

func (b *Broadcaster) NotifyOnDisplayReceiptOptionsResponse(e Event) {
	b.broadcast(NotificationOnDisplayReceiptOptionsResponse, func(l Listener) { l.OnDisplayReceiptOptionsResponse(e) })
}

func (b *Broadcaster) NotifyOnInvalidStateTransitionResponse(e Event) {
	b.broadcast(NotificationOnInvalidStateTransitionResponse, func(l Listener) { l.OnInvalidStateTransitionResponse(e) })
}

// NotifyOnSignatureCollected has no Listener method yet. It is logged and
// not delivered.
func (b *Broadcaster) NotifyOnSignatureCollected(e Event) {
	b.broadcast(NotificationOnSignatureCollected, nil)
}

func (b *Broadcaster) NotifyOnCheckBalanceResponse(e Event) {
	b.broadcast(NotificationOnCheckBalanceResponse, func(l Listener) { l.OnCheckBalanceResponse(e) })
}

// NotifyOnTipResponse has no Listener method yet. It is logged and not
// delivered.
func (b *Broadcaster) NotifyOnTipResponse(e Event) {
	b.broadcast(NotificationOnTipResponse, nil)
}
