package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/source"
)

var listingColumns = []string{
	"property_name", "property_title", "property_type", "price", "total_area",
	"city", "location", "price_per_sqft", "description", "room_count",
	"has_balcony", "source_id",
}

func newMockRepo(t *testing.T, id string) (*SourceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSourceRepositoryWithDB(id, sqlx.NewDb(db, "postgres")), mock
}

func TestQueryListings_NormalizesRows(t *testing.T) {
	repo, mock := newMockRepo(t, "source_2")

	rows := sqlmock.NewRows(listingColumns).
		AddRow("Green Meadows", "2BHK", "Apartment", 5500000.0, 1100.0, "Pune", "Baner", 5000.0, "Nice", int64(2), true, "source_2").
		AddRow("", "", "", -1.0, 900.0, "", "", 0.0, "", int64(0), false, "")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT property_name")).
		WithArgs(5000000.0).
		WillReturnRows(rows)

	q := &source.Query{Source: "source_2", SQL: "SELECT property_name FROM properties p WHERE price >= $1", Args: []interface{}{5000000.0}}
	listings, err := repo.QueryListings(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Green Meadows", listings[0].PropertyName)
	assert.Equal(t, 2, listings[0].RoomCount)
	assert.True(t, listings[0].HasBalcony)

	assert.Equal(t, model.DefaultName, listings[1].PropertyName)
	assert.Equal(t, model.DefaultPropertyType, listings[1].PropertyType)
	assert.Equal(t, model.DefaultLocation, listings[1].Location)
	assert.Equal(t, 0.0, listings[1].Price)
	assert.Equal(t, "source_2", listings[1].SourceID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryListings_UndefinedColumn(t *testing.T) {
	repo, mock := newMockRepo(t, "source_2")

	mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{
		Code:    "42703",
		Message: "column p.total_area does not exist",
	})

	_, err := repo.QueryListings(context.Background(), &source.Query{SQL: "SELECT p.total_area FROM properties p"})
	require.Error(t, err)

	var drift *SchemaDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "source_2", drift.Source)
	assert.Equal(t, "p", drift.Qualifier)
	assert.Equal(t, "total_area", drift.Column)

	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryListings_ConnectionFailure(t *testing.T) {
	repo, mock := newMockRepo(t, "source_3")

	mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{
		Code:    "08006",
		Message: "connection failure",
	})

	_, err := repo.QueryListings(context.Background(), &source.Query{SQL: "SELECT 1"})
	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "source_3", connErr.Source)
}

func TestQueryListings_OtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t, "source_3")

	syntaxErr := &pq.Error{Code: "42601", Message: "syntax error at or near \"FROM\""}
	mock.ExpectQuery("SELECT").WillReturnError(syntaxErr)

	_, err := repo.QueryListings(context.Background(), &source.Query{SQL: "SELECT FROM"})
	require.Error(t, err)

	var drift *SchemaDriftError
	var connErr *ConnectivityError
	assert.False(t, errors.As(err, &drift))
	assert.False(t, errors.As(err, &connErr))
}

func TestColumns(t *testing.T) {
	repo, mock := newMockRepo(t, "source_2")

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("public", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("price").
			AddRow("property_name").
			AddRow("total_area_sqft"))

	columns, err := repo.Columns(context.Background(), "public", []string{"properties"})
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "property_name", "total_area_sqft"}, columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTables(t *testing.T) {
	repo, mock := newMockRepo(t, "source_3")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY table_name, ordinal_position")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name"}).
			AddRow("location", "locationid").
			AddRow("location", "location").
			AddRow("pricing", "price"))

	tables, err := repo.Tables(context.Background(), "public")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"location": {"locationid", "location"},
		"pricing":  {"price"},
	}, tables)
}

func TestParseMissingColumn(t *testing.T) {
	tests := []struct {
		message   string
		qualifier string
		column    string
	}{
		{"column p.total_area does not exist", "p", "total_area"},
		{`column "Total_Area" does not exist`, "", "Total_Area"},
		{`column pr."Price (INR)" does not exist`, "pr", "Price (INR)"},
		{"pq: column price_inr does not exist", "", "price_inr"},
		{"relation \"properties\" does not exist", "", ""},
	}

	for _, tt := range tests {
		qualifier, column := parseMissingColumn(tt.message)
		assert.Equal(t, tt.qualifier, qualifier, tt.message)
		assert.Equal(t, tt.column, column, tt.message)
	}
}

func TestClassify_MessageFallback(t *testing.T) {
	err := classify("source_2", errors.New("ERROR: column l.locality does not exist"))

	var drift *SchemaDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "l", drift.Qualifier)
	assert.Equal(t, "locality", drift.Column)
}
