// Package httpserver exposes a read-only JSON view of the marketplace plus
// health and metrics endpoints.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/convert"
	"github.com/and161185/marketstore/internal/metrics"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/snapshot"
)

// Catalog is the query side of the marketplace service.
type Catalog interface {
	Sellers(ctx context.Context) []model.Seller
	Products(ctx context.Context) []model.Product
	FindSeller(ctx context.Context, id string) (model.Seller, bool)
	FindProduct(ctx context.Context, id string) (model.Product, bool)
	ProductsOfSeller(ctx context.Context, sellerID string) []model.Product
	Requests(ctx context.Context) []model.Request
	RequestsBySender(ctx context.Context, sellerID string) []model.Request
	RequestsByReceiver(ctx context.Context, sellerID string) []model.Request
	CountProductsPublishedBetween(ctx context.Context, from, to time.Time) int
	CountProductsBySeller(ctx context.Context, sellerID string) int
	CountContacts(ctx context.Context, sellerID string) int
	Top10(ctx context.Context) []model.Product
}

// Server serves the catalog over HTTP.
type Server struct {
	catalog Catalog
	log     *zap.Logger
}

// New constructs the router. gatherer backs /metrics.
func New(catalog Catalog, gatherer prometheus.Gatherer, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{catalog: catalog, log: log}

	r := gin.New()
	r.Use(Recover(log), Logging(log, m))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/sellers", s.listSellers)
		api.GET("/sellers/:id", s.getSeller)
		api.GET("/sellers/:id/products", s.sellerProducts)
		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)
		api.GET("/requests", s.listRequests)
		api.GET("/top", s.top)
		api.GET("/stats", s.stats)
	}
	return r
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// publicSeller hides the credential hash.
func publicSeller(v model.Seller) snapshot.SellerDoc {
	d := convert.ToSellerDoc(v)
	d.Credential = ""
	return d
}

func (s *Server) listSellers(c *gin.Context) {
	sellers := s.catalog.Sellers(c.Request.Context())
	out := make([]snapshot.SellerDoc, 0, len(sellers))
	for _, v := range sellers {
		out = append(out, publicSeller(v))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getSeller(c *gin.Context) {
	v, ok := s.catalog.FindSeller(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "seller not found"})
		return
	}
	c.JSON(http.StatusOK, publicSeller(v))
}

func (s *Server) sellerProducts(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, ok := s.catalog.FindSeller(ctx, id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "seller not found"})
		return
	}
	c.JSON(http.StatusOK, convert.ToProductDocs(s.catalog.ProductsOfSeller(ctx, id)))
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, convert.ToProductDocs(s.catalog.Products(c.Request.Context())))
}

func (s *Server) getProduct(c *gin.Context) {
	v, ok := s.catalog.FindProduct(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, convert.ToProductDoc(v))
}

// listRequests filters by ?sender= or ?receiver= when given.
func (s *Server) listRequests(c *gin.Context) {
	ctx := c.Request.Context()
	var reqs []model.Request
	switch {
	case c.Query("sender") != "":
		reqs = s.catalog.RequestsBySender(ctx, c.Query("sender"))
	case c.Query("receiver") != "":
		reqs = s.catalog.RequestsByReceiver(ctx, c.Query("receiver"))
	default:
		reqs = s.catalog.Requests(ctx)
	}
	c.JSON(http.StatusOK, convert.ToRequestDocs(reqs))
}

func (s *Server) top(c *gin.Context) {
	c.JSON(http.StatusOK, convert.ToProductDocs(s.catalog.Top10(c.Request.Context())))
}

type statsQuery struct {
	From   time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	To     time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	Seller string    `form:"seller"`
}

type statsResponse struct {
	PublishedInRange int    `json:"published_in_range"`
	SellerID         string `json:"seller_id,omitempty"`
	SellerProducts   int    `json:"seller_products"`
	SellerContacts   int    `json:"seller_contacts"`
}

// stats counts products in [from, to end of day] and, with ?seller=, the
// seller's publications and contacts.
func (s *Server) stats(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	to := q.To.Add(24*time.Hour - time.Nanosecond)
	resp := statsResponse{PublishedInRange: s.catalog.CountProductsPublishedBetween(ctx, q.From, to)}
	if q.Seller != "" {
		resp.SellerID = q.Seller
		resp.SellerProducts = s.catalog.CountProductsBySeller(ctx, q.Seller)
		resp.SellerContacts = s.catalog.CountContacts(ctx, q.Seller)
	}
	c.JSON(http.StatusOK, resp)
}
