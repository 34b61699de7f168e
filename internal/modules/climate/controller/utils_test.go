package controller

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func Test_parseYears(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []int
		wantErr bool
	}{
		{"default selection", "", []int{2020, 2021, 2022, 2023, 2024}, false},
		{"explicit empty", "selection=1", []int{}, false},
		{"repeated", "year=2024&year=1940", []int{2024, 1940}, false},
		{"comma separated", "year=1940,%202024", []int{1940, 2024}, false},
		{"blank values use default", "year=", []int{2020, 2021, 2022, 2023, 2024}, false},
		{"not a number", "year=20x4", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+tt.query, nil)
			got, err := parseYears(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseYears() err = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseYears() = %v; want %v", got, tt.want)
			}
		})
	}
}
