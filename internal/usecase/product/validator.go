package product

import (
	"fmt"

	"product-catalog/internal/validation"
)

func listRules(q *ListQuery) validation.Table {
	table := validation.Table{
		{Field: "params", Rules: []validation.Rule{validation.JSON()}},
		{Field: "sorter", Rules: []validation.Rule{validation.JSON()}},
		{Field: "page", Rules: []validation.Rule{validation.Integer()}},
	}
	for i := range q.Columns {
		table = append(table, validation.FieldRules{
			Field: fmt.Sprintf("columns.%d", i),
			Rules: []validation.Rule{validation.JSON()},
		})
	}
	return table
}

func productRules() validation.Table {
	return validation.Table{
		{Field: "title", Rules: []validation.Rule{validation.Required(), validation.String()}},
		{Field: "description", Rules: []validation.Rule{validation.Required(), validation.String()}},
		{Field: "price", Rules: []validation.Rule{validation.Required(), validation.Numeric(), validation.Gte(0)}},
	}
}

func storeRules() validation.Table {
	return append(validation.Table{
		{Field: "id", Rules: []validation.Rule{validation.Integer()}},
	}, append(productRules(),
		validation.FieldRules{Field: "image", Rules: []validation.Rule{validation.Required(), validation.File()}},
	)...)
}

func statsRules() validation.Table {
	var table validation.Table
	for _, field := range statsFields {
		table = append(table, validation.FieldRules{Field: field, Rules: []validation.Rule{validation.Date()}})
	}
	return table
}

func importRules() validation.Table {
	return validation.Table{
		{Field: "file", Rules: []validation.Rule{validation.Required(), validation.File()}},
	}
}
