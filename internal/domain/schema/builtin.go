package schema

// Entity names served by the built-in registry.
const (
	EntityCampaigns        = "campaigns"
	EntityPurchaseRequests = "purchase_requests"
)

// BuiltIn returns the registry for the campaign and purchase-request
// entities. Field names match the storage column names.
func BuiltIn() *Registry {
	r := NewRegistry()

	rangeOps := []Operator{
		OpEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpBetween,
	}
	enumOps := []Operator{OpEquals, OpIn, OpNotIn}

	campaigns := []Field{
		MustField("name", TypeText, OpContains, OpStartsWith, OpEndsWith, OpEquals),
		MustField("description", TypeText, OpContains),
		MustField("client_company", TypeText, OpContains, OpStartsWith, OpEquals),
		MustField("status", TypeEnum, enumOps...),
		MustField("budget", TypeNumber, rangeOps...),
		MustField("start_date", TypeDate, rangeOps...),
		MustField("end_date", TypeDate, rangeOps...),
		MustField("created_at", TypeDate, rangeOps...),
		MustField("updated_at", TypeDate, rangeOps...),
	}
	if err := r.Register(EntityCampaigns, campaigns,
		[]string{"name", "description", "client_company"}); err != nil {
		panic(err)
	}

	purchaseRequests := []Field{
		MustField("title", TypeText, OpContains, OpStartsWith, OpEndsWith, OpEquals),
		MustField("description", TypeText, OpContains),
		MustField("category", TypeEnum, enumOps...),
		MustField("status", TypeEnum, enumOps...),
		MustField("urgency", TypeEnum, enumOps...),
		MustField("quantity", TypeNumber, rangeOps...),
		MustField("unit_price", TypeNumber, rangeOps...),
		MustField("total_amount", TypeNumber, rangeOps...),
		MustField("created_at", TypeDate, rangeOps...),
		MustField("updated_at", TypeDate, rangeOps...),
	}
	if err := r.Register(EntityPurchaseRequests, purchaseRequests,
		[]string{"title", "description", "category"}); err != nil {
		panic(err)
	}

	return r
}
