package taxonomy

// CategoryOther is the forgiving default: extraction output outside the
// closed set is coerced to it instead of rejected.
const CategoryOther = "other"

var CategoryList = []string{
	"transfer",
	"withdrawal",
	"goods_payment",
	"airtime_purchase",
	"loan_payment",
	"loan_disbursement",
	"fund_transfer",
	"refund",
	"deposit",
	CategoryOther,
}

var categorySet = func() map[string]bool {
	set := make(map[string]bool, len(CategoryList))
	for _, c := range CategoryList {
		set[c] = true
	}
	return set
}()

func IsCategoryAllowed(category string) bool {
	return categorySet[category]
}
