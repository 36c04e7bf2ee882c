package handler

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"pawmart_web/internal/domain"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeBackend is an in-memory marketplace REST backend.
type fakeBackend struct {
	mu       sync.Mutex
	listings []domain.Listing
	orders   []domain.Order
	users    map[string]domain.ApplicationUser
	failRole bool
	hits     map[string]int
	lastAuth string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users: map[string]domain.ApplicationUser{
			"ann@example.com":   {Email: "ann@example.com", Name: "Ann", Role: domain.RoleUser},
			"admin@example.com": {Email: "admin@example.com", Name: "Root", Role: domain.RoleAdmin},
		},
		hits: map[string]int{},
	}
}

func (b *fakeBackend) hitCount(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *fakeBackend) router() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		b.mu.Lock()
		b.hits[c.Request.Method+" "+c.FullPath()]++
		b.lastAuth = c.GetHeader("Authorization")
		b.mu.Unlock()
		c.Next()
	})

	r.GET("/listings", b.listListings)
	r.GET("/listings/:id", b.getListing)
	r.POST("/listings", b.createListing)
	r.PATCH("/listings/:id", b.updateListing)
	r.DELETE("/listings/:id", b.deleteListing)
	r.GET("/orders", b.listOrders)
	r.POST("/orders", b.createOrder)
	r.DELETE("/orders/:id", b.deleteOrder)
	r.GET("/users", b.listUsers)
	r.GET("/users/:email", b.getUser)
	r.PATCH("/users/role/:email", b.updateRole)
	return r
}

func (b *fakeBackend) listListings(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Listing{}
	for _, l := range b.listings {
		if email := c.Query("email"); email != "" && l.Email != email {
			continue
		}
		if category := c.Query("category"); category != "" && string(l.Category) != category {
			continue
		}
		out = append(out, l)
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit < len(out) {
		out = out[:limit]
	}
	c.JSON(http.StatusOK, out)
}

func (b *fakeBackend) indexListing(id string) int {
	for i := range b.listings {
		if b.listings[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *fakeBackend) getListing(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexListing(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Listing not found"})
		return
	}
	c.JSON(http.StatusOK, b.listings[i])
}

func (b *fakeBackend) createListing(c *gin.Context) {
	var l domain.Listing
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	l.ID = primitive.NewObjectID().Hex()
	b.listings = append(b.listings, l)
	c.JSON(http.StatusCreated, gin.H{"acknowledged": true, "insertedId": l.ID})
}

func (b *fakeBackend) updateListing(c *gin.Context) {
	var l domain.Listing
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexListing(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Listing not found"})
		return
	}
	l.ID = b.listings[i].ID
	b.listings[i] = l
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "modifiedCount": 1})
}

func (b *fakeBackend) deleteListing(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexListing(c.Param("id")); i >= 0 {
		b.listings = append(b.listings[:i], b.listings[i+1:]...)
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}

func (b *fakeBackend) listOrders(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Order{}
	for _, o := range b.orders {
		if o.Email == c.Query("email") {
			out = append(out, o)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *fakeBackend) createOrder(c *gin.Context) {
	var o domain.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	o.ID = primitive.NewObjectID().Hex()
	b.orders = append(b.orders, o)
	c.JSON(http.StatusCreated, gin.H{"acknowledged": true, "insertedId": o.ID})
}

func (b *fakeBackend) deleteOrder(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == c.Param("id") {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}

func (b *fakeBackend) listUsers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ApplicationUser, 0, len(b.users))
	for _, email := range []string{"admin@example.com", "ann@example.com"} {
		if u, ok := b.users[email]; ok {
			out = append(out, u)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *fakeBackend) getUser(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[strings.ToLower(c.Param("email"))]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (b *fakeBackend) updateRole(c *gin.Context) {
	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRole {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Role service down"})
		return
	}
	u, ok := b.users[c.Param("email")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	u.Role = body.Role
	b.users[u.Email] = u
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "modifiedCount": 1})
}
