package domain

type UserRole string

const (
	RoleBrand      UserRole = "brand"
	RoleInfluencer UserRole = "influencer"
	RoleAdmin      UserRole = "admin"
)

func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleBrand, RoleInfluencer, RoleAdmin:
		return UserRole(s), true
	}
	return "", false
}

type TransactionType string

const (
	TransactionDeposit         TransactionType = "Deposit"
	TransactionWithdrawal      TransactionType = "Withdrawal"
	TransactionCampaignPayment TransactionType = "CampaignPayment"
	TransactionCampaignEarning TransactionType = "CampaignEarning"
	TransactionCommissionFee   TransactionType = "CommissionFee"
	TransactionRefund          TransactionType = "Refund"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusInEscrow PaymentStatus = "InEscrow"
	PaymentStatusReleased PaymentStatus = "Released"
	PaymentStatusRefunded PaymentStatus = "Refunded"
	PaymentStatusFailed   PaymentStatus = "Failed"
)

// ParsePaymentStatus проверяет строку на соответствие известным статусам.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusInEscrow, PaymentStatusReleased,
		PaymentStatusRefunded, PaymentStatusFailed:
		return PaymentStatus(s), true
	}
	return "", false
}

// IsTerminal сообщает, является ли статус конечным. Из конечного статуса переходов нет.
func (p PaymentStatus) IsTerminal() bool {
	switch p {
	case PaymentStatusReleased, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

type PaymentType string

const (
	PaymentTypeCampaignDeposit  PaymentType = "CampaignDeposit"
	PaymentTypeCampaignPayout   PaymentType = "CampaignPayout"
	PaymentTypeWalletDeposit    PaymentType = "WalletDeposit"
	PaymentTypeWalletWithdrawal PaymentType = "WalletWithdrawal"
	PaymentTypeCommissionFee    PaymentType = "CommissionFee"
)

func ParsePaymentType(s string) (PaymentType, bool) {
	switch PaymentType(s) {
	case PaymentTypeCampaignDeposit, PaymentTypeCampaignPayout, PaymentTypeWalletDeposit,
		PaymentTypeWalletWithdrawal, PaymentTypeCommissionFee:
		return PaymentType(s), true
	}
	return "", false
}

type CampaignStatus string

const (
	CampaignStatusDraft         CampaignStatus = "Draft"
	CampaignStatusOpen          CampaignStatus = "Open"
	CampaignStatusInProgress    CampaignStatus = "InProgress"
	CampaignStatusPendingReview CampaignStatus = "PendingReview"
	CampaignStatusCompleted     CampaignStatus = "Completed"
	CampaignStatusCancelled     CampaignStatus = "Cancelled"
	CampaignStatusDisputed      CampaignStatus = "Disputed"
)

func ParseCampaignStatus(s string) (CampaignStatus, bool) {
	switch CampaignStatus(s) {
	case CampaignStatusDraft, CampaignStatusOpen, CampaignStatusInProgress,
		CampaignStatusPendingReview, CampaignStatusCompleted, CampaignStatusCancelled,
		CampaignStatusDisputed:
		return CampaignStatus(s), true
	}
	return "", false
}
