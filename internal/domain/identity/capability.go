package identity

// Capability is a closed set of permission tags. Handlers gate mutating
// operations on these rather than on role names, so role composition can
// change without touching call sites.
type Capability string

const (
	CapPOSOperate      Capability = "pos.operate"
	CapStockAdjust     Capability = "stock.adjust"
	CapPurchasesManage Capability = "purchases.manage"
	CapCreditReceive   Capability = "credit.receive"
	CapCreditCharge    Capability = "credit.charge"
	CapCreditView      Capability = "credit.view"
	CapReportsView     Capability = "reports.view"
	CapUsersManage     Capability = "users.manage"
	CapSettingsManage  Capability = "settings.manage"
)

// AllCapabilities lists every known capability tag
func AllCapabilities() []Capability {
	return []Capability{
		CapPOSOperate,
		CapStockAdjust,
		CapPurchasesManage,
		CapCreditReceive,
		CapCreditCharge,
		CapCreditView,
		CapReportsView,
		CapUsersManage,
		CapSettingsManage,
	}
}

// IsValid checks whether the capability is known
func (c Capability) IsValid() bool {
	for _, known := range AllCapabilities() {
		if c == known {
			return true
		}
	}
	return false
}
