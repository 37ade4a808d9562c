package rules

import (
	"github.com/shopspring/decimal"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// Category labels used by the built-in rule set.
const (
	CategoryServiceFee        = "service fee"
	CategoryProcessingFee     = "processing fee"
	CategoryIncomeReceived    = "income received"
	CategoryWages             = "wages"
	CategoryInsuranceFee      = "insurance fee"
	CategoryInterest          = "interest"
	CategoryRent              = "rent"
	CategoryUtilities         = "utilities"
	CategoryCreditCardPayment = "credit card payment"
	CategoryInternalTransfer  = "internal transfer"
	CategoryLeaseFee          = "lease fee"
	CategoryTax               = "tax"
)

func exact(v string) *AmountMatcher {
	return &AmountMatcher{Op: AmountExact, Value: decimal.RequireFromString(v)}
}

func atLeast(v string) *AmountMatcher {
	return &AmountMatcher{Op: AmountAtLeast, Value: decimal.RequireFromString(v)}
}

func atMost(v string) *AmountMatcher {
	return &AmountMatcher{Op: AmountAtMost, Value: decimal.RequireFromString(v)}
}

// DefaultRules returns the built-in ordered rule set. Exact recurring
// narratives come first, then vendor-specific keywords, then broad
// catch-alls; reordering the list changes classification results, since the
// first match always wins.
func DefaultRules() []Rule {
	specs := []Rule{
		// Exact recurring monthly fees.
		{
			Pattern: "PLAN FEE", Direction: model.DirectionDebit, Amount: exact("120.00"),
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "monthly account plan fee", RegisterOfflinePayment: true},
		},
		{
			Pattern: "FULL PLAN FEE REBATE", Direction: model.DirectionCredit, Amount: exact("120.00"),
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "plan fee rebate"},
		},
		// Bank service charges.
		{
			Pattern: "DEPOSIT NOTE FEE", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "bank service charge", RegisterOfflinePayment: true},
		},
		{
			Pattern: "SERVICE CHARGE", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "bank service charge", RegisterOfflinePayment: true},
		},
		{
			Pattern: `^DISCOUNT\s+\d+\s+AT\s+\$\d+(?:\.\d+)?$`, Regex: true, Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "bank service charge", RegisterOfflinePayment: true},
		},
		{
			Pattern: "Chq Printing Fee", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryServiceFee, PaymentDetail: "cheque printing", RegisterOfflinePayment: true, RegisterCheckUsage: true},
		},
		// Card settlement income and fees. The fee rules sit before the
		// settlement catch-all because both mention the same processor.
		{
			Pattern: `VSA FEE\d+ MSP/DIV`, Regex: true, Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryProcessingFee, PaymentDetail: "card processor fee", ReceiptRequired: true},
		},
		{
			Pattern: `MON FEE\d+ MSP/DIV`, Regex: true, Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryProcessingFee, PaymentDetail: "card processor fee", ReceiptRequired: true},
		},
		{
			Pattern: "FIRST DATA CANADA", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryProcessingFee, PaymentDetail: "card processor fee"},
		},
		{
			Pattern: "FIRST DATA CANADA", Direction: model.DirectionCredit,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "card settlement"},
		},
		{
			Pattern: `IOT PAY.*MSP/DIV`, Regex: true,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "payment platform settlement"},
		},
		// Delivery platform deposits.
		{
			Pattern: `UBER HOLDINGS.*MSP/DIV`, Regex: true,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "delivery platform deposit"},
		},
		{
			Pattern: `\bUBER\b`, Regex: true,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "delivery platform deposit"},
		},
		{
			Pattern: "FANTUAN", Direction: model.DirectionCredit,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "delivery platform deposit"},
		},
		// Payroll batches.
		{
			Pattern: `PAYROLL.*BUS/ENT`, Regex: true, Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryWages, PaymentDetail: "payroll batch", AttachmentRequired: true},
		},
		// Settlement deposits identified only by reference shape.
		{
			Pattern: `^MC\d+\s+\d+$`, Regex: true, Direction: model.DirectionCredit,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "card settlement"},
		},
		{
			Pattern: `^UP\d+\s+\d+$`, Regex: true, Direction: model.DirectionCredit,
			Outcome: Outcome{Category: CategoryIncomeReceived, PaymentDetail: "card settlement"},
		},
		// Utilities, split by size: small amounts are staff-housing meters.
		{
			Pattern: "ENBRIDGE GAS", Direction: model.DirectionDebit, Amount: atMost("300"),
			Outcome: Outcome{Category: CategoryUtilities, PaymentDetail: "staff housing gas", ReceiptRequired: true},
		},
		{
			Pattern: "ENBRIDGE GAS", Direction: model.DirectionDebit, Amount: atLeast("500"),
			Outcome: Outcome{Category: CategoryUtilities, PaymentDetail: "storefront gas", ReceiptRequired: true},
		},
		{
			Pattern: "HYDRO", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryUtilities, PaymentDetail: "electricity", ReceiptRequired: true},
		},
		// Insurance, rent, vehicle leases.
		{
			Pattern: `ICBC.*INS/ASS`, Regex: true, Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryInsuranceFee, PaymentDetail: "vehicle insurance", AttachmentRequired: true, RegisterOfflinePayment: true},
		},
		{
			Pattern: `RENT/LEASE Rent \d+`, Regex: true, Direction: model.DirectionDebit, Amount: exact("5000"),
			Outcome: Outcome{Category: CategoryRent, PaymentDetail: "storefront rent", ReceiptRequired: true},
		},
		{
			Pattern: "VW CREDIT CAN", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryLeaseFee, PaymentDetail: "vehicle lease", ReceiptRequired: true, RegisterOfflinePayment: true},
		},
		// Government remittances.
		{
			Pattern: "PROVINCE OF BC", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryTax, PaymentDetail: "provincial sales tax", ReceiptRequired: true, RegisterOfflinePayment: true},
		},
		// Credit card repayment and inter-account moves.
		{
			Pattern: "BMO PAYMENT     CBP/PFE", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryCreditCardPayment, PaymentDetail: "credit card repayment", ReceiptRequired: true},
		},
		{
			Pattern: `CREDIT\s+CARD|VISA|MASTERCARD|AMEX`, Regex: true,
			Outcome: Outcome{Category: CategoryCreditCardPayment, PaymentDetail: "card-related transaction", RegisterOfflinePayment: true},
		},
		{
			Pattern: "TRANSFER", Direction: model.DirectionNone,
			Outcome: Outcome{Category: CategoryInternalTransfer, PaymentDetail: "inter-account transfer"},
		},
		// Interest, either direction.
		{
			Pattern: "INTEREST",
			Outcome: Outcome{Category: CategoryInterest},
		},
		// Generic fee catch-all; must stay after every specific fee rule.
		{
			Pattern: "FEE", Direction: model.DirectionDebit,
			Outcome: Outcome{Category: CategoryProcessingFee, PaymentDetail: "bank fee", RegisterOfflinePayment: true},
		},
	}

	for i := range specs {
		if err := specs[i].validate(); err != nil {
			// Built-in rules are fixed at compile time; a bad one is a bug.
			panic(err)
		}
	}
	return specs
}
