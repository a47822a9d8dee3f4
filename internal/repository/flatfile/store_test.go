package flatfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
)

func newStore(t *testing.T) (*Store, Paths) {
	t.Helper()
	dir := t.TempDir()
	p := Paths{
		Sellers:  filepath.Join(dir, "sellers.txt"),
		Products: filepath.Join(dir, "products.txt"),
		Requests: filepath.Join(dir, "requests.txt"),
	}
	s, err := NewStore(p, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	return s, p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewStore_RequiresPaths(t *testing.T) {
	_, err := NewStore(Paths{Sellers: "a", Products: "b"}, nil, nil)
	require.ErrorIs(t, err, errs.ErrMissingConfig)
	_, err = NewStore(Paths{}, nil, nil)
	require.ErrorIs(t, err, errs.ErrMissingConfig)
}

func TestStore_ResolvesPublicationsInOrder(t *testing.T) {
	s, p := newStore(t)
	writeFile(t, p.Products, "P1%Bike%%%%10%5%%ACTIVE%SPORTS\nP2%Lamp%%%%20%1%%SOLD%HOME\n")
	writeFile(t, p.Sellers, "S1%Ana%Gomez%1%Street%x%P2,P1%S2%\nS2%Luis%Paz%2%Av%y%%S1%\n")
	writeFile(t, p.Requests, "R1%S2%S1%PENDING\n")

	sellers, err := s.Sellers().All(context.Background())
	require.NoError(t, err)
	require.Len(t, sellers, 2)

	s1 := sellers[0]
	require.Len(t, s1.Publications, 2)
	require.Equal(t, "P2", s1.Publications[0].Target.ID)
	require.Equal(t, "Lamp", s1.Publications[0].Target.Name)
	require.Equal(t, "P1", s1.Publications[1].Target.ID)
	require.Equal(t, "Luis", s1.Contacts[0].Target.Name)
	require.Equal(t, "Ana", s1.Contacts[0].Target.Contacts[0].Target.Name)

	reqs, err := s.Requests().All(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Equal(t, "Luis", reqs[0].Sender.Target.Name)
	require.Equal(t, "Ana", reqs[0].Receiver.Target.Name)
}

func TestStore_FindByID(t *testing.T) {
	s, p := newStore(t)
	writeFile(t, p.Products, "P1%Bike%%%%10%5%%ACTIVE%SPORTS\n")
	ctx := context.Background()

	got, ok, err := s.Products().FindByID(ctx, "P1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 10, got.Price)

	_, ok, err = s.Products().FindByID(ctx, "P404")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.Sellers().FindByID(ctx, "S1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_DeleteLeavesDanglingReference(t *testing.T) {
	s, p := newStore(t)
	writeFile(t, p.Products, "P1%Bike%%%%10%5%%ACTIVE%SPORTS\nP2%Lamp%%%%20%1%%SOLD%HOME\n")
	writeFile(t, p.Sellers, "S1%Ana%Gomez%1%Street%x%P1,P2%%\n")
	ctx := context.Background()

	g, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, g.RemoveProduct("P1"))
	require.NoError(t, s.Save(ctx, g))

	g, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, g.Products, 1)
	require.Equal(t, "Lamp", g.Products[0].Name)
	require.Equal(t, 20, g.Products[0].Price)

	s1, ok := g.Seller("S1")
	require.True(t, ok)
	require.Equal(t, []string{"P1", "P2"}, s1.PublicationIDs())
	require.False(t, s1.Publications[0].Resolved())
	require.True(t, s1.Publications[1].Resolved())
}

func TestStore_SaveWritesAllThree(t *testing.T) {
	s, p := newStore(t)
	ctx := context.Background()
	g, _ := repository.Link(
		[]model.Seller{{ID: "S1", Name: "Ana", Publications: []model.ProductRef{{ID: "P1"}}}},
		[]model.Product{{ID: "P1", Name: "Bike", Price: 3, Status: model.StatusActive, Category: model.CategorySports}},
		nil,
	)
	require.NoError(t, s.Save(ctx, g))

	for _, path := range []string{p.Sellers, p.Products, p.Requests} {
		_, err := os.Stat(path)
		require.NoError(t, err, path)
	}
	b, err := os.ReadFile(p.Sellers)
	require.NoError(t, err)
	require.Equal(t, "S1%Ana%%%%%P1%%\n", string(b))
}

func TestStore_SaveRejectedRecordTouchesNoFile(t *testing.T) {
	s, p := newStore(t)
	ctx := context.Background()
	files := map[string]string{
		p.Sellers:  "S1%Ana%%%%%%%\n",
		p.Products: "P0%Old%%%%5%0%%ACTIVE%OTHER\n",
		p.Requests: "R1%S1%S1%PENDING\n",
	}
	for path, content := range files {
		writeFile(t, path, content)
	}

	g, err := s.Load(ctx)
	require.NoError(t, err)
	seller, ok := g.Seller("S1")
	require.True(t, ok)
	seller.AddPublication(model.ProductRef{ID: "P1"})
	g.Products = append(g.Products, model.Product{ID: "P1", Price: -5, Status: model.StatusActive, Category: model.CategoryOther})

	err = s.Save(ctx, g)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
	for path, content := range files {
		b, rerr := os.ReadFile(path)
		require.NoError(t, rerr)
		require.Equal(t, content, string(b), path)
	}
}

func TestStore_SaveRejectsEveryBadCollectionAtOnce(t *testing.T) {
	s, p := newStore(t)
	g, _ := repository.Link(
		[]model.Seller{{ID: "S1", Name: "50%"}},
		[]model.Product{{ID: "bad%id", Status: model.StatusActive, Category: model.CategoryOther}},
		[]model.Request{{ID: "R1", Status: model.RequestPending}},
	)
	err := s.Save(context.Background(), g)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
	require.Contains(t, err.Error(), "product[0]")
	require.Contains(t, err.Error(), "seller[0]")

	for _, path := range []string{p.Sellers, p.Products, p.Requests} {
		_, statErr := os.Stat(path)
		require.True(t, os.IsNotExist(statErr), path)
	}
}

func TestStore_EndToEnd(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	published := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Products().WriteAll(ctx, []model.Product{{
		ID: "P1", Name: "Guitar", Description: "Acoustic", PublishedAt: published,
		ImagePath: "img/g.png", Price: 900, Likes: 4, Status: model.StatusActive, Category: model.CategoryOther,
	}}))
	require.NoError(t, s.Sellers().Append(ctx, model.Seller{
		ID: "S1", Name: "Ana", Publications: []model.ProductRef{{ID: "P1"}},
	}))

	got, ok, err := s.Sellers().FindByID(ctx, "S1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Publications, 1)
	p := got.Publications[0].Target
	require.NotNil(t, p)
	require.Equal(t, "Guitar", p.Name)
	require.Equal(t, "Acoustic", p.Description)
	require.True(t, published.Equal(p.PublishedAt))
	require.Equal(t, 900, p.Price)
	require.Equal(t, 4, p.Likes)
}
