package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"merchant-client/internal/domain"
	custrepo "merchant-client/internal/repository/customer"
	customersvc "merchant-client/internal/service/customer"
)

func TestCSVImporter_Run(t *testing.T) {
	csvData := `full_name,business_name,email,phone
Ada Lovelace,,ada@example.com,+44 1
Charles Babbage,Analytical Engines Ltd,CHARLES@example.com,
,,,
Ada Again,,ada@example.com,`

	svc := customersvc.New(custrepo.NewMemory())
	imp := NewCSVImporter(strings.NewReader(csvData), svc, "m-1")

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 2 || res.Duplicates != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	list, err := svc.List(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(list))
	}
	var business *domain.Customer
	for i := range list {
		if list[i].Email == "charles@example.com" {
			business = &list[i]
		}
	}
	if business == nil || business.BusinessName == nil || *business.BusinessName != "Analytical Engines Ltd" {
		t.Fatalf("expected business customer, got %+v", list)
	}
	if business.Phone != nil {
		t.Fatalf("empty phone column should stay unset, got %q", *business.Phone)
	}
}

func TestCSVImporter_RowWithoutEmailFails(t *testing.T) {
	csvData := "full_name,email\nNo Mail,\n"
	svc := customersvc.New(custrepo.NewMemory())

	_, err := NewCSVImporter(strings.NewReader(csvData), svc, "m-1").Run(context.Background())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestCSVImporter_RequiresEmailColumn(t *testing.T) {
	svc := customersvc.New(custrepo.NewMemory())
	if _, err := NewCSVImporter(strings.NewReader("name\nx\n"), svc, "m-1").Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing email column")
	}
}
