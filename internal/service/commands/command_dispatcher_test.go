package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/repository/memory"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/collection"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
	"github.com/mamadbah2/eggtracker/internal/service/mode"
	"github.com/mamadbah2/eggtracker/internal/service/packing"
	"github.com/mamadbah2/eggtracker/internal/service/reporting"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
)

type fakePublisher struct {
	sold []models.Carton
}

func (f *fakePublisher) SinkEnabled() bool { return true }

func (f *fakePublisher) PublishSale(_ context.Context, c models.Carton) error {
	f.sold = append(f.sold, c)
	return nil
}

type fixture struct {
	svc       *Service
	ledger    *ledger.Service
	cartons   *cartons.Service
	mode      *mode.Service
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog := models.DefaultCatalog()
	state := repository.NewState(memory.NewStore(), catalog, models.DefaultPreferences(models.DefaultPriceTable()))
	l := ledger.NewService(state, nil)
	col := collection.NewService(state, l, nil)
	c := cartons.NewService(state, nil)
	m := mode.NewService(state, nil)
	st := settings.NewService(state, nil)
	p := packing.NewService(catalog, l, c, m, nil)
	pub := &fakePublisher{}

	svc := NewService(Services{
		Catalog:     catalog,
		Collections: col,
		Packing:     p,
		Cartons:     c,
		Mode:        m,
		Settings:    st,
		Reporting:   reporting.NewService(catalog, col, c, l, st, time.UTC, nil),
		Publisher:   pub,
	}, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, ledger: l, cartons: c, mode: m, publisher: pub}
}

func (f *fixture) run(t *testing.T, text string) (string, error) {
	t.Helper()
	return f.svc.HandleCommand(context.Background(), models.ParseCommand(text), "15550001111")
}

func (f *fixture) mustRun(t *testing.T, text string) string {
	t.Helper()
	reply, err := f.run(t, text)
	if err != nil {
		t.Fatalf("%q: %v", text, err)
	}
	return reply
}

func TestCollectFollowsModePolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("speed mode with species", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		reply := f.mustRun(t, "/collect 24 6 ducks found by the pond")
		if !strings.Contains(reply, "30 eggs") {
			t.Errorf("reply = %q", reply)
		}
		inv := f.ledger.Get(ctx)
		if inv.Count(models.GenericChicken) != 24 || inv.Count(models.GenericDuck) != 6 {
			t.Errorf("inventory = %v", inv)
		}
	})

	t.Run("speed mode single aggregate", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		for _, id := range []models.CategoryID{models.Duck, models.Quail, models.Turkey, models.Guinea} {
			if _, err := f.mode.SetCategoryEnabled(ctx, id, false); err != nil {
				t.Fatalf("SetCategoryEnabled: %v", err)
			}
		}

		f.mustRun(t, "/collect 18 morning round")
		if got := f.ledger.Get(ctx).Count(models.Generic); got != 18 {
			t.Errorf("generic = %d, want 18", got)
		}
	})

	t.Run("per color", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		if _, err := f.mode.SetSpeedMode(ctx, false); err != nil {
			t.Fatalf("SetSpeedMode: %v", err)
		}

		reply := f.mustRun(t, "/collect 6 white 4 blue")
		if !strings.Contains(reply, "White: 6, Blue: 4") {
			t.Errorf("reply = %q", reply)
		}
		inv := f.ledger.Get(ctx)
		if inv.Count(models.White) != 6 || inv.Count(models.Blue) != 4 {
			t.Errorf("inventory = %v", inv)
		}

		if _, err := f.run(t, "/collect 6 plaid"); !errors.Is(err, ErrInvalidArguments) {
			t.Errorf("unknown color: err = %v", err)
		}
	})

	t.Run("disabled species", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		if _, err := f.mode.SetCategoryEnabled(ctx, models.Quail, false); err != nil {
			t.Fatalf("SetCategoryEnabled: %v", err)
		}

		var invalid *models.InvalidInputError
		if _, err := f.run(t, "/collect 5 quail"); !errors.As(err, &invalid) {
			t.Fatalf("err = %v, want InvalidInputError", err)
		}
		if got := f.ledger.Get(ctx).Total(); got != 0 {
			t.Errorf("loose = %d, want 0", got)
		}
	})

	t.Run("missing quantity", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		for _, text := range []string{"/collect", "/collect lots", "/collect -3"} {
			if _, err := f.run(t, text); !errors.Is(err, ErrInvalidArguments) {
				t.Errorf("%q: err = %v, want ErrInvalidArguments", text, err)
			}
		}
	})
}

func TestPack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("bulk", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.mustRun(t, "/collect 30")

		reply := f.mustRun(t, "/pack")
		if reply != "Packed 2 boxes. 6 eggs stay loose." {
			t.Errorf("reply = %q", reply)
		}
		if got := len(f.cartons.ListUnsold(ctx)); got != 2 {
			t.Errorf("unsold = %d, want 2", got)
		}
	})

	t.Run("species", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.mustRun(t, "/collect 7 duck")

		reply := f.mustRun(t, "/pack duck 6")
		if reply != "Packed 1 boxes. 1 eggs stay loose." {
			t.Errorf("reply = %q", reply)
		}

		var stock *models.InsufficientStockError
		if _, err := f.run(t, "/pack duck 6"); !errors.As(err, &stock) {
			t.Errorf("second pack err = %v, want InsufficientStockError", err)
		}
	})

	t.Run("per color carton", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		if _, err := f.mode.SetSpeedMode(ctx, false); err != nil {
			t.Fatalf("SetSpeedMode: %v", err)
		}
		f.mustRun(t, "/collect 8 white 4 blue")

		reply := f.mustRun(t, "/pack 8 white 4 blue")
		if !strings.Contains(reply, "12 eggs") {
			t.Errorf("reply = %q", reply)
		}
		if got := f.ledger.Get(ctx).Total(); got != 0 {
			t.Errorf("loose = %d, want 0", got)
		}
	})

	t.Run("bad size", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		if _, err := f.run(t, "/pack zero"); !errors.Is(err, ErrInvalidArguments) {
			t.Errorf("err = %v, want ErrInvalidArguments", err)
		}
	})
}

func TestSell(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.mustRun(t, "/collect 24")
	f.mustRun(t, "/pack")
	unsold := f.cartons.ListUnsold(ctx)
	if len(unsold) != 2 {
		t.Fatalf("unsold = %d, want 2", len(unsold))
	}
	first, second := unsold[0].ID, unsold[1].ID

	reply := f.mustRun(t, "/sell "+first[len(first)-8:]+" Ada Lovelace $5.50")
	if !strings.Contains(reply, "sold to Ada Lovelace for $5.50") {
		t.Errorf("reply = %q", reply)
	}

	reply = f.mustRun(t, "/sell "+second)
	if !strings.Contains(reply, "sold to Walk-in for $6.00") {
		t.Errorf("estimated reply = %q", reply)
	}

	if _, err := f.run(t, "/sell "+first); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("resell err = %v, want ErrInvalidState", err)
	}
	f.mustRun(t, "/collect 12")
	f.mustRun(t, "/pack")
	third := f.cartons.ListUnsold(ctx)[0].ID
	var saleErr *models.InvalidSaleInputError
	for _, price := range []string{"$0", "0.00", "-2"} {
		if _, err := f.run(t, "/sell "+third+" Bob "+price); !errors.As(err, &saleErr) || saleErr.Field != "price" {
			t.Errorf("price %s: err = %v, want InvalidSaleInputError{price}", price, err)
		}
	}
	if _, err := f.run(t, "/sell"); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("empty sell err = %v", err)
	}
	if len(f.publisher.sold) != 2 {
		t.Errorf("published = %d, want 2", len(f.publisher.sold))
	}

	summary := f.cartons.Summary(ctx)
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("11.5")) {
		t.Errorf("revenue = %s, want 11.5", summary.TotalRevenue)
	}
}

func TestInformationalCommands(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.mustRun(t, "/collect 5")

	if reply := f.mustRun(t, "/help"); reply != HelpMessage {
		t.Errorf("help = %q", reply)
	}
	if reply := f.mustRun(t, "stock"); !strings.Contains(reply, "Loose eggs: 5") {
		t.Errorf("stock = %q", reply)
	}
	if reply := f.mustRun(t, "/report"); !strings.Contains(reply, "Weekly report (2024-06-03 to 2024-06-09)") {
		t.Errorf("report = %q", reply)
	}
	if _, err := f.run(t, "hello there"); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("unknown err = %v, want ErrUnsupportedCommand", err)
	}
}
