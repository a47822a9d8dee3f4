package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/convert"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/snapshot"
)

const dateLayout = "2006-01-02"

func toProducts(ps []model.Product) []snapshot.ProductDoc { return convert.ToProductDocs(ps) }

// sellerView hides the credential hash from listings.
func sellerView(ss []model.Seller) []snapshot.SellerDoc {
	out := convert.ToSellerDocs(ss)
	for i := range out {
		out[i].Credential = ""
	}
	return out
}

// setFlags returns the flags given on the command line with their values.
func setFlags(fs *flag.FlagSet) map[string]string {
	set := make(map[string]string)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })
	return set
}

// keep overwrites dst only when the flag was given.
func keep(set map[string]string, name string, dst *string) {
	if v, ok := set[name]; ok {
		*dst = v
	}
}

// ---- seller ----

func (a *app) seller(ctx context.Context, args []string) error {
	v, rest, err := verb("seller", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("seller "+v, flag.ContinueOnError)
	switch v {
	case "add", "edit":
		id := fs.String("id", "", "seller id (add: generated when empty)")
		name := fs.String("name", "", "name")
		surname := fs.String("surname", "", "surname")
		nid := fs.String("nid", "", "national id")
		address := fs.String("address", "", "address")
		password := fs.String("password", "", "credential")
		req := []string{"name", "password"}
		if v == "edit" {
			req = []string{"id"}
		}
		if err := parse(fs, rest, req...); err != nil {
			return err
		}
		if v == "edit" {
			cur, ok := a.svc.FindSeller(ctx, *id)
			if !ok {
				return fmt.Errorf("seller %s: %w", *id, errs.ErrNotFound)
			}
			set := setFlags(fs)
			keep(set, "name", &cur.Name)
			keep(set, "surname", &cur.Surname)
			keep(set, "nid", &cur.NationalID)
			keep(set, "address", &cur.Address)
			// empty keeps the stored hash
			cur.Credential = set["password"]
			if err := a.svc.UpdateSeller(ctx, cur); err != nil {
				return err
			}
			return a.ok("updated %s", *id)
		}
		in := model.Seller{ID: *id, Name: *name, Surname: *surname, NationalID: *nid, Address: *address, Credential: *password}
		s, err := a.svc.CreateSeller(ctx, in)
		if err != nil {
			return err
		}
		return a.ok("%s", s.ID)
	case "list":
		if err := parse(fs, rest); err != nil {
			return err
		}
		return a.printJSON(sellerView(a.svc.Sellers(ctx)))
	case "rm":
		id := fs.String("id", "", "seller id")
		if err := parse(fs, rest, "id"); err != nil {
			return err
		}
		if err := a.svc.DeleteSeller(ctx, *id); err != nil {
			return err
		}
		return a.ok("deleted %s", *id)
	}
	return fmt.Errorf("%w: unknown seller subcommand %q", errUsage, v)
}

// ---- product ----

func (a *app) product(ctx context.Context, args []string) error {
	v, rest, err := verb("product", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("product "+v, flag.ContinueOnError)
	switch v {
	case "add", "edit":
		owner := fs.String("owner", "", "owning seller id")
		id := fs.String("id", "", "product id (add: generated when empty)")
		name := fs.String("name", "", "name")
		desc := fs.String("desc", "", "description")
		image := fs.String("image", "", "image path")
		price := fs.Int("price", 0, "price")
		category := fs.String("category", "", "category")
		status := fs.String("status", "", "status")
		req := []string{"owner", "name"}
		if v == "edit" {
			req = []string{"id"}
		}
		if err := parse(fs, rest, req...); err != nil {
			return err
		}
		if v == "edit" {
			cur, ok := a.svc.FindProduct(ctx, *id)
			if !ok {
				return fmt.Errorf("product %s: %w", *id, errs.ErrNotFound)
			}
			set := setFlags(fs)
			keep(set, "name", &cur.Name)
			keep(set, "desc", &cur.Description)
			keep(set, "image", &cur.ImagePath)
			if _, ok := set["price"]; ok {
				cur.Price = *price
			}
			cur.Category = model.Category(set["category"])
			cur.Status = model.ProductStatus(set["status"])
			if err := a.svc.UpdateProduct(ctx, cur); err != nil {
				return err
			}
			return a.ok("updated %s", *id)
		}
		in := model.Product{ID: *id, Name: *name, Description: *desc, ImagePath: *image, Price: *price,
			Category: model.Category(*category), Status: model.ProductStatus(*status)}
		p, err := a.svc.CreateProduct(ctx, *owner, in)
		if err != nil {
			return err
		}
		return a.ok("%s", p.ID)
	case "list":
		seller := fs.String("seller", "", "only publications of this seller")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if *seller != "" {
			return a.printJSON(toProducts(a.svc.ProductsOfSeller(ctx, *seller)))
		}
		return a.printJSON(toProducts(a.svc.Products(ctx)))
	case "rm":
		id := fs.String("id", "", "product id")
		if err := parse(fs, rest, "id"); err != nil {
			return err
		}
		if err := a.svc.DeleteProduct(ctx, *id); err != nil {
			return err
		}
		return a.ok("deleted %s", *id)
	case "like":
		id := fs.String("id", "", "product id")
		if err := parse(fs, rest, "id"); err != nil {
			return err
		}
		n, err := a.svc.LikeProduct(ctx, *id)
		if err != nil {
			return err
		}
		return a.ok("%d", n)
	case "status":
		id := fs.String("id", "", "product id")
		status := fs.String("status", "", "new status")
		if err := parse(fs, rest, "id", "status"); err != nil {
			return err
		}
		st, err := model.ParseProductStatus(*status)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if err := a.svc.SetProductStatus(ctx, *id, st); err != nil {
			return err
		}
		return a.ok("%s %s", *id, st)
	}
	return fmt.Errorf("%w: unknown product subcommand %q", errUsage, v)
}

// ---- request ----

func (a *app) request(ctx context.Context, args []string) error {
	v, rest, err := verb("request", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("request "+v, flag.ContinueOnError)
	switch v {
	case "send":
		from := fs.String("from", "", "sender seller id")
		to := fs.String("to", "", "receiver seller id")
		if err := parse(fs, rest, "from", "to"); err != nil {
			return err
		}
		r, err := a.svc.SendRequest(ctx, *from, *to)
		if err != nil {
			return err
		}
		return a.ok("%s", r.ID)
	case "list":
		sender := fs.String("sender", "", "filter by sender")
		receiver := fs.String("receiver", "", "filter by receiver")
		if err := parse(fs, rest); err != nil {
			return err
		}
		var reqs []model.Request
		switch {
		case *sender != "":
			reqs = a.svc.RequestsBySender(ctx, *sender)
		case *receiver != "":
			reqs = a.svc.RequestsByReceiver(ctx, *receiver)
		default:
			reqs = a.svc.Requests(ctx)
		}
		return a.printJSON(convert.ToRequestDocs(reqs))
	case "accept", "reject":
		id := fs.String("id", "", "request id")
		if err := parse(fs, rest, "id"); err != nil {
			return err
		}
		st := model.RequestAccepted
		if v == "reject" {
			st = model.RequestRejected
		}
		if err := a.svc.SetRequestStatus(ctx, *id, st); err != nil {
			return err
		}
		return a.ok("%s %s", *id, st)
	case "rm":
		id := fs.String("id", "", "request id")
		if err := parse(fs, rest, "id"); err != nil {
			return err
		}
		if err := a.svc.DeleteRequest(ctx, *id); err != nil {
			return err
		}
		return a.ok("deleted %s", *id)
	}
	return fmt.Errorf("%w: unknown request subcommand %q", errUsage, v)
}

// ---- comment ----

func (a *app) comment(ctx context.Context, args []string) error {
	v, rest, err := verb("comment", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("comment "+v, flag.ContinueOnError)
	product := fs.String("product", "", "product id")
	switch v {
	case "add":
		author := fs.String("author", "", "author seller id")
		text := fs.String("text", "", "comment text")
		if err := parse(fs, rest, "product", "author", "text"); err != nil {
			return err
		}
		c, err := a.svc.AddComment(ctx, *product, *author, *text)
		if err != nil {
			return err
		}
		return a.ok("%s", c.ID)
	case "edit":
		id := fs.String("id", "", "comment id")
		text := fs.String("text", "", "new text")
		if err := parse(fs, rest, "product", "id", "text"); err != nil {
			return err
		}
		if err := a.svc.UpdateComment(ctx, *product, *id, *text); err != nil {
			return err
		}
		return a.ok("updated %s", *id)
	case "rm":
		id := fs.String("id", "", "comment id")
		if err := parse(fs, rest, "product", "id"); err != nil {
			return err
		}
		if err := a.svc.RemoveComment(ctx, *product, *id); err != nil {
			return err
		}
		return a.ok("deleted %s", *id)
	}
	return fmt.Errorf("%w: unknown comment subcommand %q", errUsage, v)
}

// ---- report / snapshot / login ----

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	out := fs.String("out", "", "report file")
	author := fs.String("author", "", "report author")
	from := fs.String("from", "", "range start (YYYY-MM-DD)")
	to := fs.String("to", "", "range end, inclusive (YYYY-MM-DD)")
	seller := fs.String("seller", "", "seller for per-seller figures")
	if err := parse(fs, args, "out", "author", "from", "to"); err != nil {
		return err
	}
	start, err := time.Parse(dateLayout, *from)
	if err != nil {
		return fmt.Errorf("%w: -from: %v", errUsage, err)
	}
	end, err := time.Parse(dateLayout, *to)
	if err != nil {
		return fmt.Errorf("%w: -to: %v", errUsage, err)
	}
	end = end.Add(24*time.Hour - time.Nanosecond)
	if err := a.svc.ExportReport(ctx, *out, *author, start, end, *seller); err != nil {
		return err
	}
	return a.ok("report written to %s", *out)
}

func (a *app) snapshot(ctx context.Context, args []string) error {
	v, rest, err := verb("snapshot", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("snapshot "+v, flag.ContinueOnError)
	format := fs.String("format", "", "binary, xml or yaml")
	switch v {
	case "export":
		if err := parse(fs, rest); err != nil {
			return err
		}
		var formats []snapshot.Format
		if *format != "" {
			f, err := snapshot.ParseFormat(*format)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			formats = append(formats, f)
		}
		if err := a.svc.RefreshSnapshots(ctx, formats...); err != nil {
			return err
		}
		return a.ok("snapshots exported")
	case "import":
		if err := parse(fs, rest, "format"); err != nil {
			return err
		}
		f, err := snapshot.ParseFormat(*format)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		g, err := a.svc.LoadSnapshot(ctx, f)
		if err != nil {
			return err
		}
		return a.printJSON(map[string]int{
			"sellers":  len(g.Sellers),
			"products": len(g.Products),
			"requests": len(g.Requests),
		})
	}
	return fmt.Errorf("%w: unknown snapshot subcommand %q", errUsage, v)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	id := fs.String("id", "", "seller id")
	password := fs.String("password", "", "credential")
	if err := parse(fs, args, "id", "password"); err != nil {
		return err
	}
	if err := a.svc.Authenticate(ctx, *id, *password); err != nil {
		return err
	}
	a.svc.RecordAction("seller", "login", "cli")
	a.log.Debug("cli session", zap.String("seller_id", *id))
	return a.ok("ok")
}
