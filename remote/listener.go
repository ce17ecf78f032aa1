package remote

// Listener receives device events. Methods are called synchronously, one at
// a time per Broadcaster, in the order events arrive. Embed BaseListener to
// implement only the methods of interest.
type Listener interface {
	// OnDeviceConnected is called when a connection to the device is
	// established. The device is not ready for requests until
	// OnDeviceReady.
	OnDeviceConnected()
	OnDeviceReady(info MerchantInfo)
	OnDeviceDisconnected()

	// OnDeviceActivityStart and OnDeviceActivityEnd bracket a screen shown
	// on the device.
	OnDeviceActivityStart(e Event)
	OnDeviceActivityEnd(e Event)
	OnDeviceError(e DeviceErrorEvent)
	OnTipAdded(e TipAdded)

	// Payment operation results.
	OnSaleResponse(e Event)
	OnAuthResponse(e Event)
	OnPreAuthResponse(e Event)
	OnCapturePreAuthResponse(e Event)
	OnIncrementPreAuthResponse(e Event)
	OnTipAdjustAuthResponse(e Event)
	OnRefundPaymentResponse(e Event)
	OnManualRefundResponse(e Event)
	OnVoidPaymentResponse(e Event)
	OnVoidPaymentRefundResponse(e Event)
	OnCloseoutResponse(e Event)
	OnVaultCardResponse(e Event)

	// Requests the POS must answer.
	OnVerifySignatureRequest(e Event)
	OnConfirmPaymentRequest(e Event)

	OnRetrievePendingPaymentsResponse(e Event)
	OnReadCardDataResponse(e Event)
	OnMessageFromActivity(e Event)
	OnCustomActivityResponse(e Event)
	OnRetrieveDeviceStatusResponse(e Event)
	OnResetDeviceResponse(e Event)
	OnRetrievePaymentResponse(e Event)
	OnRetrievePrintersResponse(e Event)
	OnPrintJobStatusResponse(e Event)

	// Receipts the POS is asked to print.
	OnPrintRefundPaymentReceipt(e Event)
	OnPrintPaymentMerchantCopyReceipt(e Event)
	OnPrintPaymentDeclineReceipt(e Event)
	OnPrintPaymentReceipt(e Event)
	OnPrintManualRefundReceipt(e Event)
	OnPrintManualRefundDeclineReceipt(e Event)

	OnCustomerProvidedData(e Event)
	OnDisplayReceiptOptionsResponse(e Event)
	OnInvalidStateTransitionResponse(e Event)
	OnCheckBalanceResponse(e Event)
}

// BaseListener implements Listener with methods that do nothing.
type BaseListener struct{}

var _ Listener = BaseListener{}

func (BaseListener) OnDeviceConnected()                      {}
func (BaseListener) OnDeviceReady(MerchantInfo)              {}
func (BaseListener) OnDeviceDisconnected()                   {}
func (BaseListener) OnDeviceActivityStart(Event)             {}
func (BaseListener) OnDeviceActivityEnd(Event)               {}
func (BaseListener) OnDeviceError(DeviceErrorEvent)          {}
func (BaseListener) OnTipAdded(TipAdded)                     {}
func (BaseListener) OnSaleResponse(Event)                    {}
func (BaseListener) OnAuthResponse(Event)                    {}
func (BaseListener) OnPreAuthResponse(Event)                 {}
func (BaseListener) OnCapturePreAuthResponse(Event)          {}
func (BaseListener) OnIncrementPreAuthResponse(Event)        {}
func (BaseListener) OnTipAdjustAuthResponse(Event)           {}
func (BaseListener) OnRefundPaymentResponse(Event)           {}
func (BaseListener) OnManualRefundResponse(Event)            {}
func (BaseListener) OnVoidPaymentResponse(Event)             {}
func (BaseListener) OnVoidPaymentRefundResponse(Event)       {}
func (BaseListener) OnCloseoutResponse(Event)                {}
func (BaseListener) OnVaultCardResponse(Event)               {}
func (BaseListener) OnVerifySignatureRequest(Event)          {}
func (BaseListener) OnConfirmPaymentRequest(Event)           {}
func (BaseListener) OnRetrievePendingPaymentsResponse(Event) {}
func (BaseListener) OnReadCardDataResponse(Event)            {}
func (BaseListener) OnMessageFromActivity(Event)             {}
func (BaseListener) OnCustomActivityResponse(Event)          {}
func (BaseListener) OnRetrieveDeviceStatusResponse(Event)    {}
func (BaseListener) OnResetDeviceResponse(Event)             {}
func (BaseListener) OnRetrievePaymentResponse(Event)         {}
func (BaseListener) OnRetrievePrintersResponse(Event)        {}
func (BaseListener) OnPrintJobStatusResponse(Event)          {}
func (BaseListener) OnPrintRefundPaymentReceipt(Event)       {}
func (BaseListener) OnPrintPaymentMerchantCopyReceipt(Event) {}
func (BaseListener) OnPrintPaymentDeclineReceipt(Event)      {}
func (BaseListener) OnPrintPaymentReceipt(Event)             {}
func (BaseListener) OnPrintManualRefundReceipt(Event)        {}
func (BaseListener) OnPrintManualRefundDeclineReceipt(Event) {}
func (BaseListener) OnCustomerProvidedData(Event)            {}
func (BaseListener) OnDisplayReceiptOptionsResponse(Event)   {}
func (BaseListener) OnInvalidStateTransitionResponse(Event)  {}
func (BaseListener) OnCheckBalanceResponse(Event)            {}
