package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/service"
	"github.com/niksmo/onboarding/internal/core/validate"
	"github.com/niksmo/onboarding/pkg/datauri"
)

var errQuit = errors.New("wizard is left, progress is saved")

// wizard walks the three registration screens over a line based terminal.
type wizard struct {
	in       *bufio.Scanner
	out      io.Writer
	tasker   service.TaskerScreen
	seller   service.SellerScreen
	products *service.ProductsScreen
}

func newWizard(
	in io.Reader, out io.Writer,
	tasker service.TaskerScreen,
	seller service.SellerScreen,
	products *service.ProductsScreen,
) *wizard {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64<<10), 2*datauri.MaxSize)
	return &wizard{
		in:       sc,
		out:      out,
		tasker:   tasker,
		seller:   seller,
		products: products,
	}
}

func (w *wizard) run(ctx context.Context) error {
	w.printf("Tasker details\n")
	if err := w.taskerStep(ctx); err != nil {
		return err
	}
	w.printf("\nSeller details\n")
	if err := w.sellerStep(ctx); err != nil {
		return err
	}
	w.printf("\nProducts\n")
	return w.productsStep(ctx)
}

func (w *wizard) taskerStep(ctx context.Context) error {
	v := w.tasker.Resume(ctx)
	for {
		var err error
		if v.Name, err = w.ask("Name", v.Name); err != nil {
			return err
		}
		if v.Phone, err = w.ask("Phone number", v.Phone); err != nil {
			return err
		}

		errs, err := w.tasker.Confirm(ctx, v)
		if w.confirmed(errs, err) {
			return nil
		}
	}
}

func (w *wizard) sellerStep(ctx context.Context) error {
	v := w.seller.Resume(ctx)
	for {
		var err error
		if v.SellerName, err = w.ask("Seller name", v.SellerName); err != nil {
			return err
		}
		if v.ShopName, err = w.ask("Shop name", v.ShopName); err != nil {
			return err
		}
		if v.ShopImage, err = w.askImage("Shop image", v.ShopImage); err != nil {
			return err
		}
		if v.GSTNumber, err = w.ask("GST number", v.GSTNumber); err != nil {
			return err
		}
		v.SellerPhoneNumber, err = w.ask("Phone number", v.SellerPhoneNumber)
		if err != nil {
			return err
		}

		errs, err := w.seller.Confirm(ctx, v)
		if w.confirmed(errs, err) {
			return nil
		}
	}
}

func (w *wizard) confirmed(errs validate.FieldErrors, err error) bool {
	if err != nil {
		w.printf("%s\n", w.products.Message(err))
		return false
	}
	if !errs.Valid() {
		w.printErrors(errs)
		return false
	}
	return true
}

func (w *wizard) productsStep(ctx context.Context) error {
	if err := w.targetStep(); err != nil {
		return err
	}

	for {
		snap := w.products.Snapshot()
		w.printProducts(snap)

		cmd, err := w.ask("[a]dd, [r]emove <n>, [s]ubmit, [q]uit", "")
		if err != nil {
			return err
		}

		name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
		switch name {
		case "a", "add":
			if err := w.addProduct(ctx); err != nil {
				return err
			}
		case "r", "remove":
			n, convErr := strconv.Atoi(strings.TrimSpace(arg))
			if convErr != nil || n < 1 {
				w.printf("Pick a product number from the list.\n")
				continue
			}
			if err := w.products.Remove(ctx, n-1); err != nil {
				w.printf("Pick a product number from the list.\n")
			}
		case "s", "submit":
			err := w.products.Submit(ctx)
			w.printf("%s\n", w.products.Message(err))
			if err == nil {
				return nil
			}
		case "q", "quit":
			return errQuit
		default:
			w.printf("Unknown command %q.\n", name)
		}
	}
}

func (w *wizard) targetStep() error {
	qs := make([]string, 0, len(domain.Quantities()))
	for _, q := range domain.Quantities() {
		qs = append(qs, string(q))
	}

	for {
		current := string(w.products.Snapshot().Target)
		label := fmt.Sprintf("Number of products (%s)", strings.Join(qs, ", "))
		v, err := w.ask(label, current)
		if err != nil {
			return err
		}
		if err := w.products.SetTarget(domain.Quantity(v)); err == nil {
			return nil
		}
		w.printf("Choose one of: %s\n", strings.Join(qs, ", "))
	}
}

func (w *wizard) addProduct(ctx context.Context) error {
	p := w.products.Snapshot().Candidate

	var err error
	if p.Name, err = w.ask("Product name", p.Name); err != nil {
		return err
	}
	if p.MRP, err = w.ask("MRP", p.MRP); err != nil {
		return err
	}
	if p.MSP, err = w.ask("MSP", p.MSP); err != nil {
		return err
	}
	if p.Image1, err = w.askImage("First image", p.Image1); err != nil {
		return err
	}
	if p.Image2, err = w.askImage("Second image", p.Image2); err != nil {
		return err
	}
	if p.Image3, err = w.askImage("Third image (optional)", p.Image3); err != nil {
		return err
	}

	errs, err := w.products.Add(ctx, p)
	switch {
	case err != nil:
		w.printf("%s\n", w.products.Message(err))
	case !errs.Valid():
		w.printErrors(errs)
	}
	return nil
}

// ask prints label and reads one line. An empty answer keeps current.
func (w *wizard) ask(label, current string) (string, error) {
	if current != "" {
		w.printf("%s [%s]: ", label, current)
	} else {
		w.printf("%s: ", label)
	}

	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	line := strings.TrimSpace(w.in.Text())
	if line == "" {
		return current, nil
	}
	return line, nil
}

// askImage reads a file path and returns it as a data URI.
func (w *wizard) askImage(label, current string) (string, error) {
	shown := ""
	if current != "" {
		shown = "keep"
	}

	for {
		v, err := w.ask(label+" file", shown)
		if err != nil {
			return "", err
		}
		switch {
		case v == "" || v == "keep":
			return current, nil
		case datauri.Is(v):
			return v, nil
		}

		uri, err := datauri.FromFile(v)
		if err == nil {
			return uri, nil
		}
		w.printf("Could not use %q: %v\n", v, err)
	}
}

func (w *wizard) printProducts(s service.ProductsSnapshot) {
	w.printf("\n%d/%d products added (%s)\n", s.Done, s.Total, s.State)
	for i, p := range s.Products {
		w.printf("  %d. %s  MRP %s  MSP %s\n", i+1, p.Name, p.MRP, p.MSP)
	}
}

func (w *wizard) printErrors(errs validate.FieldErrors) {
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		w.printf("  %s: %s\n", field, errs[field])
	}
}

func (w *wizard) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(w.out, format, a...)
}
