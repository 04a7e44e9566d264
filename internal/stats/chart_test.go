package stats

import "testing"

func TestBookedTestChart(t *testing.T) {
	chart := BookedTestChart([]BookedTest{
		{Name: "CBC", Count: 12},
		{Name: "Lipid Profile", Count: 7},
	})

	if len(chart) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(chart))
	}
	if chart[0][0] != "Test Name" || chart[0][1] != "Total Booked" {
		t.Fatalf("unexpected header row: %v", chart[0])
	}
	if chart[1][0] != "CBC" || chart[1][1] != 12 {
		t.Fatalf("unexpected first row: %v", chart[1])
	}
	if chart[2][0] != "Lipid Profile" || chart[2][1] != 7 {
		t.Fatalf("unexpected second row: %v", chart[2])
	}
}

func TestBookedTestChartEmpty(t *testing.T) {
	chart := BookedTestChart(nil)
	if len(chart) != 1 {
		t.Fatalf("expected header-only chart, got %d rows", len(chart))
	}
}

func TestDeliveryStatusChart(t *testing.T) {
	chart := DeliveryStatusChart([]StatusCount{
		{Status: "pending", Count: 4},
		{Status: "delivered", Count: 9},
	})

	if len(chart) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(chart))
	}
	if chart[0][0] != "Delivery Status" || chart[0][1] != "count" {
		t.Fatalf("unexpected header row: %v", chart[0])
	}
	if chart[1][0] != "pending" || chart[1][1] != 4 {
		t.Fatalf("unexpected first row: %v", chart[1])
	}
}
