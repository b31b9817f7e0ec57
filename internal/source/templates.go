package source

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
)

// Source2 reads the normalized relational export: properties with lookup
// tables for type, location, city and room configuration.
func Source2() *Template {
	const id = "source_2"
	return &Template{
		ID:     id,
		Schema: "public",
		Tables: map[string]string{
			"p":  "properties",
			"pt": "property_types",
			"l":  "locations",
			"c":  "cities",
			"r":  "rooms",
		},
		Primary: "p",
		Fields: map[string]string{
			FieldPropertyName:  "p",
			FieldPropertyTitle: "p",
			FieldPrice:         "p",
			FieldTotalArea:     "p",
			FieldPricePerSqft:  "p",
			FieldDescription:   "p",
			FieldRooms:         "r",
			FieldBalcony:       "p",
		},
		Defaults: map[string]string{
			FieldPropertyName:  "property_name",
			FieldPropertyTitle: "property_title",
			FieldPrice:         "price",
			FieldTotalArea:     "total_area_sqft",
			FieldPricePerSqft:  "price_per_sqft",
			FieldDescription:   "description",
			FieldRooms:         "total_rooms",
			FieldBalcony:       "balcony",
		},
		selectSQL: func(c Columns) string {
			return fmt.Sprintf(`
		SELECT
			COALESCE(%s, %s) AS property_name,
			COALESCE(%s, '') AS property_title,
			COALESCE(pt.property_type, %s) AS property_type,
			COALESCE(%s, 0) AS price,
			COALESCE(%s, 0) AS total_area,
			COALESCE(c.city, %s) AS city,
			COALESCE(l.location, %s) AS location,
			COALESCE(%s, 0) AS price_per_sqft,
			COALESCE(%s, %s) AS description,
			COALESCE(%s, 0) AS room_count,
			COALESCE(%s, false) AS has_balcony,
			%s AS source_id
		FROM properties p
		LEFT JOIN property_types pt ON p.property_type_id = pt.property_type_id
		LEFT JOIN locations l ON p.location_id = l.location_id
		LEFT JOIN cities c ON l.city_id = c.city_id
		LEFT JOIN rooms r ON p.room_config_id = r.room_config_id`,
				c(FieldPropertyName), pq.QuoteLiteral(model.DefaultName),
				c(FieldPropertyTitle),
				pq.QuoteLiteral(model.DefaultPropertyType),
				c(FieldPrice),
				c(FieldTotalArea),
				pq.QuoteLiteral(model.DefaultCity),
				pq.QuoteLiteral(model.DefaultLocation),
				c(FieldPricePerSqft),
				c(FieldDescription), pq.QuoteLiteral(model.DefaultDescription),
				c(FieldRooms),
				c(FieldBalcony),
				pq.QuoteLiteral(id),
			)
		},
		filters: func(c Columns, f *model.SearchFilters, args *Args) []string {
			var where []string
			if f.PropertyName != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, '') ILIKE %s", c(FieldPropertyName), args.Add(contains(*f.PropertyName))))
			}
			if f.City != nil {
				where = append(where, fmt.Sprintf("COALESCE(c.city, '') ILIKE %s", args.Add(contains(*f.City))))
			}
			if f.Location != nil {
				where = append(where, fmt.Sprintf("COALESCE(l.location, '') ILIKE %s", args.Add(contains(*f.Location))))
			}
			if f.PriceMin != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) >= %s", c(FieldPrice), args.Add(*f.PriceMin)))
			}
			if f.PriceMax != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) <= %s", c(FieldPrice), args.Add(*f.PriceMax)))
			}
			if f.AreaMin != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) >= %s", c(FieldTotalArea), args.Add(*f.AreaMin)))
			}
			if f.AreaMax != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) <= %s", c(FieldTotalArea), args.Add(*f.AreaMax)))
			}
			if f.PropertyType != nil {
				where = append(where, fmt.Sprintf("COALESCE(pt.property_type, '') ILIKE %s", args.Add(contains(*f.PropertyType))))
			}
			if f.RoomsMin != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) >= %s", c(FieldRooms), args.Add(*f.RoomsMin)))
			}
			if f.HasBalcony {
				where = append(where, fmt.Sprintf("COALESCE(%s, false) = true", c(FieldBalcony)))
			}
			return where
		},
	}
}

// Source3 reads the scraped export: properties with location, a text priced
// pricing table ("₹ 1.2 Cr") and a features table. It has no city or
// property type.
func Source3() *Template {
	const id = "source_3"
	return &Template{
		ID:     id,
		Schema: "public",
		Tables: map[string]string{
			"p":  "properties",
			"l":  "location",
			"pr": "pricing",
			"f":  "features",
		},
		Primary: "p",
		Fields: map[string]string{
			FieldPropertyName:  "p",
			FieldPropertyTitle: "p",
			FieldPrice:         "pr",
			FieldTotalArea:     "p",
			FieldPricePerSqft:  "pr",
			FieldDescription:   "p",
			FieldRooms:         "f",
			FieldBalcony:       "f",
		},
		Defaults: map[string]string{
			FieldPropertyName:  "name",
			FieldPropertyTitle: "title",
			FieldPrice:         "price",
			FieldTotalArea:     "total_area",
			FieldPricePerSqft:  "price_per_sqft",
			FieldDescription:   "description",
			FieldRooms:         "baths",
			FieldBalcony:       "balcony",
		},
		selectSQL: func(c Columns) string {
			return fmt.Sprintf(`
		SELECT
			COALESCE(%s, %s) AS property_name,
			COALESCE(%s, %s) AS property_title,
			%s AS property_type,
			%s AS price,
			COALESCE(%s, 0) AS total_area,
			%s AS city,
			COALESCE(l.location, %s) AS location,
			COALESCE(%s, 0) AS price_per_sqft,
			COALESCE(%s, %s) AS description,
			COALESCE(%s, 0) AS room_count,
			COALESCE(%s, false) AS has_balcony,
			%s AS source_id
		FROM properties p
		LEFT JOIN location l ON p.locationid = l.locationid
		LEFT JOIN pricing pr ON p.propertyid = pr.propertyid
		LEFT JOIN features f ON p.propertyid = f.propertyid`,
				c(FieldPropertyName), pq.QuoteLiteral(model.DefaultName),
				c(FieldPropertyTitle), pq.QuoteLiteral(model.DefaultTitle),
				pq.QuoteLiteral(model.DefaultPropertyType),
				inrPriceExpr(c(FieldPrice)),
				c(FieldTotalArea),
				pq.QuoteLiteral(model.DefaultCity),
				pq.QuoteLiteral(model.DefaultLocation),
				c(FieldPricePerSqft),
				c(FieldDescription), pq.QuoteLiteral(model.DefaultDescription),
				c(FieldRooms),
				c(FieldBalcony),
				pq.QuoteLiteral(id),
			)
		},
		filters: func(c Columns, f *model.SearchFilters, args *Args) []string {
			var where []string
			if f.PropertyName != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, '') ILIKE %s", c(FieldPropertyName), args.Add(contains(*f.PropertyName))))
			}
			if f.City != nil {
				where = append(where, "1=0")
			}
			if f.Location != nil {
				where = append(where, fmt.Sprintf("COALESCE(l.location, '') ILIKE %s", args.Add(contains(*f.Location))))
			}
			if f.PriceMin != nil {
				where = append(where, fmt.Sprintf("%s >= %s", inrPriceExpr(c(FieldPrice)), args.Add(*f.PriceMin)))
			}
			if f.PriceMax != nil {
				where = append(where, fmt.Sprintf("%s <= %s", inrPriceExpr(c(FieldPrice)), args.Add(*f.PriceMax)))
			}
			if f.AreaMin != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) >= %s", c(FieldTotalArea), args.Add(*f.AreaMin)))
			}
			if f.AreaMax != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) <= %s", c(FieldTotalArea), args.Add(*f.AreaMax)))
			}
			if f.PropertyType != nil {
				where = append(where, "1=0")
			}
			if f.RoomsMin != nil {
				where = append(where, fmt.Sprintf("COALESCE(%s, 0) >= %s", c(FieldRooms), args.Add(*f.RoomsMin)))
			}
			if f.HasBalcony {
				where = append(where, fmt.Sprintf("COALESCE(%s, false) = true", c(FieldBalcony)))
			}
			return where
		},
	}
}

// inrPriceExpr converts a text price column such as '₹ 1.2 Cr' into rupees:
// Cr x 1e7, L x 1e5, acs x 1e5, k x 1e3, otherwise the bare number.
func inrPriceExpr(col string) string {
	number := func(unitPattern string) string {
		value := col
		if unitPattern != "" {
			value = fmt.Sprintf("regexp_replace(%s, '%s', '')", col, unitPattern)
		}
		return fmt.Sprintf("NULLIF(regexp_replace(%s, '[^0-9.]', '', 'g'), '')::numeric", value)
	}
	return fmt.Sprintf(`COALESCE(CASE
				WHEN position('Cr' in %[1]s) > 0 THEN %[2]s * 10000000
				WHEN position('L' in %[1]s) > 0 THEN %[3]s * 100000
				WHEN position('acs' in %[1]s) > 0 THEN %[4]s * 100000
				WHEN position('k' in %[1]s) > 0 THEN %[5]s * 1000
				ELSE %[6]s
			END, 0)`,
		col,
		number("Cr.*$"),
		number("L.*$"),
		number("acs.*$"),
		number("k.*$"),
		number(""),
	)
}

// contains wraps a user value for a case-insensitive substring match
func contains(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(value)) + "%"
}
