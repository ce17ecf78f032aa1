package remote

// Notification identifies one kind of event a Broadcaster delivers. Its
// String is the internal notification name; PublicName is the Listener
// method it is delivered to. The two differ for several notifications.
type Notification int

const (
	NotificationOnTipAdded Notification = iota
	NotificationOnRefundPaymentResponse
	NotificationCloseout
	NotificationOnDeviceActivityStart
	NotificationOnDeviceActivityEnd
	NotificationOnSaleResponse
	NotificationOnAuthResponse
	NotificationOnManualRefundResponse
	NotificationOnVerifySignatureRequest
	NotificationOnVoidPaymentResponse
	NotificationOnVoidPaymentRefundResponse
	NotificationOnConnect
	NotificationOnDisconnect
	NotificationOnReady
	NotificationOnTipAdjustAuthResponse
	NotificationOnVaultCardResponse
	NotificationOnPreAuthResponse
	NotificationOnCapturePreAuth
	NotificationOnIncrementPreAuthResponse
	NotificationOnDeviceError
	NotificationOnPrintRefundPaymentReceipt
	NotificationOnPrintPaymentMerchantCopyReceipt
	NotificationOnPrintPaymentDeclineReceipt
	NotificationOnPrintPaymentReceipt
	NotificationOnPrintCreditReceipt
	NotificationOnPrintCreditDeclineReceipt
	NotificationOnConfirmPaymentRequest
	NotificationOnRetrievePendingPaymentResponse
	NotificationOnReadCardDataResponse
	NotificationOnActivityMessage
	NotificationOnActivityResponse
	NotificationOnRetrieveDeviceStatusResponse
	NotificationOnResetDeviceResponse
	NotificationOnRetrievePaymentResponse
	NotificationOnRetrievePrintersResponse
	NotificationOnPrintJobStatusResponse
	NotificationOnCustomerProvidedDataEvent
	NotificationOnDisplayReceiptOptionsResponse
	NotificationOnInvalidStateTransitionResponse
	NotificationOnSignatureCollected
	NotificationOnCheckBalanceResponse
	NotificationOnTipResponse
)

var notificationNames = [...]struct {
	internal string
	public   string
}{
	NotificationOnTipAdded:                        {"notifyOnTipAdded", "onTipAdded"},
	NotificationOnRefundPaymentResponse:           {"notifyOnRefundPaymentResponse", "onRefundPaymentResponse"},
	NotificationCloseout:                          {"notifyCloseout", "onCloseoutResponse"},
	NotificationOnDeviceActivityStart:             {"notifyOnDeviceActivityStart", "onDeviceActivityStart"},
	NotificationOnDeviceActivityEnd:               {"notifyOnDeviceActivityEnd", "onDeviceActivityEnd"},
	NotificationOnSaleResponse:                    {"notifyOnSaleResponse", "onSaleResponse"},
	NotificationOnAuthResponse:                    {"notifyOnAuthResponse", "onAuthResponse"},
	NotificationOnManualRefundResponse:            {"notifyOnManualRefundResponse", "onManualRefundResponse"},
	NotificationOnVerifySignatureRequest:          {"notifyOnVerifySignatureRequest", "onVerifySignatureRequest"},
	NotificationOnVoidPaymentResponse:             {"notifyOnVoidPaymentResponse", "onVoidPaymentResponse"},
	NotificationOnVoidPaymentRefundResponse:       {"notifyOnVoidPaymentRefundResponse", "onVoidPaymentRefundResponse"},
	NotificationOnConnect:                         {"notifyOnConnect", "onDeviceConnected"},
	NotificationOnDisconnect:                      {"notifyOnDisconnect", "onDeviceDisconnected"},
	NotificationOnReady:                           {"notifyOnReady", "onDeviceReady"},
	NotificationOnTipAdjustAuthResponse:           {"notifyOnTipAdjustAuthResponse", "onTipAdjustAuthResponse"},
	NotificationOnVaultCardResponse:               {"notifyOnVaultCardRespose", "onVaultCardResponse"},
	NotificationOnPreAuthResponse:                 {"notifyOnPreAuthResponse", "onPreAuthResponse"},
	NotificationOnCapturePreAuth:                  {"notifyOnCapturePreAuth", "onCapturePreAuthResponse"},
	NotificationOnIncrementPreAuthResponse:        {"notifyOnIncrementPreAuthResponse", "onIncrementPreAuthResponse"},
	NotificationOnDeviceError:                     {"notifyOnDeviceError", "onDeviceError"},
	NotificationOnPrintRefundPaymentReceipt:       {"notifyOnPrintRefundPaymentReceipt", "onPrintRefundPaymentReceipt"},
	NotificationOnPrintPaymentMerchantCopyReceipt: {"notifyOnPrintPaymentMerchantCopyReceipt", "onPrintPaymentMerchantCopyReceipt"},
	NotificationOnPrintPaymentDeclineReceipt:      {"notifyOnPrintPaymentDeclineReceipt", "onPrintPaymentDeclineReceipt"},
	NotificationOnPrintPaymentReceipt:             {"notifyOnPrintPaymentReceipt", "onPrintPaymentReceipt"},
	NotificationOnPrintCreditReceipt:              {"notifyOnPrintCreditReceipt", "onPrintManualRefundReceipt"},
	NotificationOnPrintCreditDeclineReceipt:       {"notifyOnPrintCreditDeclineReceipt", "onPrintManualRefundDeclineReceipt"},
	NotificationOnConfirmPaymentRequest:           {"notifyOnConfirmPaymentRequest", "onConfirmPaymentRequest"},
	NotificationOnRetrievePendingPaymentResponse:  {"notifyOnRetrievePendingPaymentResponse", "onRetrievePendingPaymentsResponse"},
	NotificationOnReadCardDataResponse:            {"notifyOnReadCardDataResponse", "onReadCardDataResponse"},
	NotificationOnActivityMessage:                 {"notifyOnActivityMessage", "onMessageFromActivity"},
	NotificationOnActivityResponse:                {"notifyOnActivityResponse", "onCustomActivityResponse"},
	NotificationOnRetrieveDeviceStatusResponse:    {"notifyOnRetrieveDeviceStatusResponse", "onRetrieveDeviceStatusResponse"},
	NotificationOnResetDeviceResponse:             {"notifyOnResetDeviceResponse", "onResetDeviceResponse"},
	NotificationOnRetrievePaymentResponse:         {"notifyOnRetrievePaymentResponse", "onRetrievePaymentResponse"},
	NotificationOnRetrievePrintersResponse:        {"notifyOnRetrievePrintersResponse", "onRetrievePrintersResponse"},
	NotificationOnPrintJobStatusResponse:          {"notifyOnPrintJobStatusResponse", "onPrintJobStatusResponse"},
	NotificationOnCustomerProvidedDataEvent:       {"notifyOnCustomerProvidedDataEvent", "onCustomerProvidedData"},
	NotificationOnDisplayReceiptOptionsResponse:   {"notifyOnDisplayReceiptOptionsResponse", "onDisplayReceiptOptionsResponse"},
	NotificationOnInvalidStateTransitionResponse:  {"notifyOnInvalidStateTransitionResponse", "onInvalidStateTransitionResponse"},
	NotificationOnSignatureCollected:              {"notifyOnSignatureCollected", ""},
	NotificationOnCheckBalanceResponse:            {"notifyOnCheckBalanceResponse", "onCheckBalanceResponse"},
	NotificationOnTipResponse:                     {"notifyOnTipResponse", ""},
}

// Notifications returns every notification in declaration order.
func Notifications() []Notification {
	all := make([]Notification, len(notificationNames))
	for i := range all {
		all[i] = Notification(i)
	}
	return all
}

func (n Notification) String() string {
	if n < 0 || int(n) >= len(notificationNames) {
		return "unknown"
	}
	return notificationNames[n].internal
}

// PublicName returns the Listener method n is delivered to, in the
// lowerCamel form used by the device protocol, or "" when n has no public
// method and is never delivered.
func (n Notification) PublicName() string {
	if n < 0 || int(n) >= len(notificationNames) {
		return ""
	}
	return notificationNames[n].public
}

// Delivered reports whether n reaches listeners at all.
func (n Notification) Delivered() bool {
	return n.PublicName() != ""
}

// LookupNotification finds a notification by its internal name.
func LookupNotification(internal string) (Notification, bool) {
	for i, names := range notificationNames {
		if names.internal == internal {
			return Notification(i), true
		}
	}
	return 0, false
}
