// Package stats shapes aggregation results into the two-column chart series
// the admin dashboard consumes.
package stats

type BookedTest struct {
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}

type StatusCount struct {
	Status string `bson:"status"`
	Count  int    `bson:"count"`
}

// BookedTestChart prepends the header row and maps each grouped test to a
// [name, count] pair.
func BookedTestChart(rows []BookedTest) [][]interface{} {
	chart := make([][]interface{}, 0, len(rows)+1)
	chart = append(chart, []interface{}{"Test Name", "Total Booked"})
	for _, row := range rows {
		chart = append(chart, []interface{}{row.Name, row.Count})
	}
	return chart
}

// DeliveryStatusChart prepends the header row and maps each status group to a
// [status, count] pair.
func DeliveryStatusChart(rows []StatusCount) [][]interface{} {
	chart := make([][]interface{}, 0, len(rows)+1)
	chart = append(chart, []interface{}{"Delivery Status", "count"})
	for _, row := range rows {
		chart = append(chart, []interface{}{row.Status, row.Count})
	}
	return chart
}
