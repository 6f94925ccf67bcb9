package product

import (
	"encoding/json"
	"testing"

	domainProduct "product-catalog/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query ListQuery
		want  domainProduct.Filter
	}{
		{
			name:  "defaults",
			query: ListQuery{},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 1, PageSize: 10},
		},
		{
			name:  "last sorter pair wins",
			query: ListQuery{Sorter: `{"title":"ascend","price":"ascend"}`},
			want:  domainProduct.Filter{SortBy: "price", SortOrder: domainProduct.SortAsc, Page: 1, PageSize: 10},
		},
		{
			name:  "camel case alias and non ascend order",
			query: ListQuery{Sorter: `{"createdAt":"whatever"}`},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 1, PageSize: 10},
		},
		{
			name:  "unknown sort column falls back",
			query: ListQuery{Sorter: `{"password":"ascend"}`},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 1, PageSize: 10},
		},
		{
			name:  "page size is capped",
			query: ListQuery{Params: `{"pageSize":1000,"current":3}`},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 3, PageSize: 100},
		},
		{
			name:  "page parameter wins over current",
			query: ListQuery{Params: `{"pageSize":"5","current":3}`, Page: "2"},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 2, PageSize: 5},
		},
		{
			name:  "page below one",
			query: ListQuery{Page: "-4"},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 1, PageSize: 10},
		},
		{
			name:  "huge page is clamped",
			query: ListQuery{Page: "1000000000000000000"},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: MaxPage, PageSize: 10},
		},
		{
			name:  "page beyond int64 is clamped",
			query: ListQuery{Page: "99999999999999999999999"},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: MaxPage, PageSize: 10},
		},
		{
			name:  "huge current is clamped",
			query: ListQuery{Params: `{"current":1e30,"pageSize":100}`},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: MaxPage, PageSize: 100},
		},
		{
			name:  "wrong shape falls back",
			query: ListQuery{Params: `[1,2]`, Sorter: `["title"]`},
			want:  domainProduct.Filter{SortBy: "created_at", SortOrder: domainProduct.SortDesc, Page: 1, PageSize: 10},
		},
		{
			name: "keyword with searchable columns",
			query: ListQuery{
				Params: `{"keyword":"  lamp "}`,
				Columns: []string{
					`{"dataIndex":"title","search":true}`,
					`{"dataIndex":"title","search":true}`,
					`{"dataIndex":"description","search":false}`,
					`{"dataIndex":"imagePath","search":true}`,
					`{"dataIndex":"secret","search":true}`,
				},
			},
			want: domainProduct.Filter{
				Keyword:       "lamp",
				SearchColumns: []string{"title", "image"},
				SortBy:        "created_at",
				SortOrder:     domainProduct.SortDesc,
				Page:          1,
				PageSize:      10,
			},
		},
		{
			name:  "numeric keyword",
			query: ListQuery{Params: `{"keyword":42}`, Columns: []string{`{"dataIndex":"price","search":true}`}},
			want: domainProduct.Filter{
				Keyword:       "42",
				SearchColumns: []string{"price"},
				SortBy:        "created_at",
				SortOrder:     domainProduct.SortDesc,
				Page:          1,
				PageSize:      10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.OwnerUserID = 9
			got := ParseListQuery(9, &tt.query)
			assert.Equal(t, &tt.want, got)
		})
	}
}

func TestParseListQuery_OffsetStaysPositive(t *testing.T) {
	t.Parallel()

	filter := ParseListQuery(9, &ListQuery{Page: "1000000000000000000", Params: `{"pageSize":100}`})
	assert.Equal(t, (MaxPage-1)*MaxPageSize, filter.Offset())
	assert.Positive(t, filter.Offset())
}

func TestListQueryLookup(t *testing.T) {
	t.Parallel()

	q := &ListQuery{Columns: []string{"a", "b"}}

	v, ok := q.Lookup("columns.1")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = q.Lookup("columns.2")
	assert.False(t, ok)
}

func TestIDList(t *testing.T) {
	t.Parallel()

	var req DeleteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"ids":[1,"2",1790000000000000123]}`), &req))
	assert.Equal(t, IDList{1, 2, 1790000000000000123}, req.IDs)

	assert.Error(t, json.Unmarshal([]byte(`{"ids":["x"]}`), &req))

	ids, err := ParseIDList([]string{"3, 4", "", "5"})
	require.NoError(t, err)
	assert.Equal(t, IDList{3, 4, 5}, ids)

	_, err = ParseIDList([]string{"3,x"})
	assert.Error(t, err)
}

func TestToPageResponse(t *testing.T) {
	t.Parallel()

	filter := &domainProduct.Filter{Page: 2, PageSize: 2}
	page := &domainProduct.Page{
		Items: []*domainProduct.Product{{ID: 3}, {ID: 4}},
		Total: 5,
	}

	res := toPageResponse(page, filter)

	assert.Equal(t, 3, res.LastPage)
	assert.Equal(t, 3, *res.From)
	assert.Equal(t, 4, *res.To)
	assert.Equal(t, int64(5), res.Total)
}
