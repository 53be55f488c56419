package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/checkout"
	"github.com/scanline/pos-terminal/internal/domain/cart"
	"github.com/scanline/pos-terminal/internal/domain/sale"
	"github.com/scanline/pos-terminal/internal/receipt"
	"github.com/scanline/pos-terminal/internal/scan"
)

// Terminal is the line-oriented front of the engine: barcode scanners in
// keyboard-wedge mode type the code and press enter, so a plain input line
// is a scan. Lines starting with "/" are operator commands.
type Terminal struct {
	in  io.Reader
	lg  *zap.Logger
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a Terminal on the given streams.
func NewTerminal(in io.Reader, out io.Writer, lg *zap.Logger) *Terminal {
	return &Terminal{in: in, out: out, lg: lg.Named("terminal")}
}

// ShowOutcome renders one scan outcome. It is called from the engine's timer
// goroutines, hence the lock around the writer.
func (t *Terminal) ShowOutcome(o scan.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch o := o.(type) {
	case scan.NavigateToProduct:
		fmt.Fprintf(t.out, ">> %s (%s) stock=%d price=%s\n",
			o.Product.Name, o.Product.Barcode, o.Product.Quantity, o.Product.Price.StringFixed(2))
	case scan.PromptAddProduct:
		fmt.Fprintf(t.out, "?? barcode %s not found; create a product with it or cancel\n", o.Barcode)
	case scan.AddedToCart:
		fmt.Fprintf(t.out, "++ %s added to cart\n", o.Product.Name)
	case scan.ToastCleared:
		// The printed confirmation already scrolled; nothing to retract.
	case scan.OutOfStock:
		fmt.Fprintf(t.out, "!! %s is out of stock (acknowledge with /reset)\n", o.Product.Name)
	case scan.PromptRescan:
		fmt.Fprintf(t.out, "?? barcode %s not found; rescan or create a product with it\n", o.Barcode)
	case scan.Ignored:
		// Silent by contract.
	}
}

// Beep emits the scanner's audible cue.
func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, "\a")
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Loop reads lines until EOF or context cancellation.
func (t *Terminal) Loop(ctx context.Context, engine *scan.Engine, cartStore *cart.Store, orch *checkout.Orchestrator) error {
	t.printf("pos-terminal ready, mode=%s (/help for commands)\n", engine.Mode())

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(t.in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			t.lg.Error("Input stream failed", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				if quit := t.command(ctx, line, engine, cartStore, orch); quit {
					return nil
				}
				continue
			}
			engine.HandleScan(ctx, line)
		}
	}
}

func (t *Terminal) command(ctx context.Context, line string, engine *scan.Engine, cartStore *cart.Store, orch *checkout.Orchestrator) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		t.printf("%s", helpText)
	case "/mode":
		if len(args) != 1 {
			t.printf("mode is %s\n", engine.Mode())
			return false
		}
		switch scan.Mode(args[0]) {
		case scan.ModeInventory:
			engine.SetMode(scan.ModeInventory)
		case scan.ModeCheckout:
			engine.SetMode(scan.ModeCheckout)
		default:
			t.printf("unknown mode %q (inventory|checkout)\n", args[0])
			return false
		}
		t.printf("mode=%s\n", engine.Mode())
	case "/cart":
		t.showCart(cartStore)
	case "/remove":
		if len(args) != 1 {
			t.printf("usage: /remove <product-id>\n")
			return false
		}
		cartStore.Remove(ctx, args[0])
	case "/qty":
		if len(args) != 2 {
			t.printf("usage: /qty <product-id> <quantity>\n")
			return false
		}
		var qty int
		if _, err := fmt.Sscanf(args[1], "%d", &qty); err != nil {
			t.printf("bad quantity %q\n", args[1])
			return false
		}
		cartStore.UpdateQuantity(ctx, args[0], qty)
	case "/clear":
		cartStore.Clear(ctx)
		t.printf("cart cleared\n")
	case "/reset":
		engine.ResetScan()
	case "/checkout":
		t.checkout(ctx, orch, strings.Join(args, " "))
	case "/history":
		t.history(ctx, orch)
	case "/quit":
		return true
	default:
		t.printf("unknown command %s\n", cmd)
	}
	return false
}

func (t *Terminal) showCart(cartStore *cart.Store) {
	items := cartStore.Items()
	if len(items) == 0 {
		t.printf("cart is empty\n")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range items {
		fmt.Fprintf(t.out, "%3d x %-30s %8s\n",
			item.Quantity, item.Product.Name, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(t.out, "      %-30s %8s\n", "TOTAL", cartStore.Total().StringFixed(2))
}

func (t *Terminal) checkout(ctx context.Context, orch *checkout.Orchestrator, customerName string) {
	if err := orch.Begin(ctx); err != nil {
		t.printf("checkout: %v\n", err)
		return
	}
	pending, err := orch.Confirm(ctx, sale.CustomerInfo{Name: customerName})
	if err != nil {
		t.printf("checkout failed: %v\n", err)
		return
	}
	if pending.BuildErr != nil {
		t.printf("sale %s completed, receipt unavailable: %v\n", pending.Sale.ID, pending.BuildErr)
	} else {
		t.printf("%s\n", receipt.RenderText(pending.Document))
	}
	pending.Complete()
}

func (t *Terminal) history(ctx context.Context, orch *checkout.Orchestrator) {
	records, err := orch.History(ctx)
	if err != nil {
		t.printf("history: %v\n", err)
		return
	}
	if len(records) == 0 {
		t.printf("no sales yet\n")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		fmt.Fprintf(t.out, "%s  %-10s %-9s %8s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.ReceiptNumber, rec.Status, rec.Total.StringFixed(2))
	}
}

const helpText = `scan: type or scan a barcode and press enter
/mode [inventory|checkout]  show or switch mode
/cart                       show cart contents
/remove <product-id>        remove a line
/qty <product-id> <n>       set a line's quantity
/clear                      empty the cart
/reset                      acknowledge a prompt, rearm scanning
/checkout [customer name]   complete the sale
/history                    list past sales
/quit                       exit
`
