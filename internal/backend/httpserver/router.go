package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront-engine/internal/backend/repository/adherent"
	"storefront-engine/internal/backend/repository/commande"
	"storefront-engine/internal/backend/repository/produit"
)

// Deps carries the repositories the backend API serves from.
type Deps struct {
	Adherents adherent.Repository
	Produits  produit.Repository
	Commandes commande.Repository
}

func buildRouter(logger *log.Logger, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.login)

		api.GET("/adherents", h.listAdherents)
		api.POST("/adherents", h.createAdherent)
		api.GET("/adherents/:id", h.getAdherent)
		api.GET("/adherents/email/:email", h.getAdherentByEmail)

		api.GET("/produits", h.listProduits)
		api.GET("/produits/:id", h.getProduit)
		api.POST("/produits", h.createProduit)

		api.GET("/commandes", h.listCommandes)
		api.POST("/commandes", h.createCommande)
		api.GET("/commandes/:id", h.getCommande)
		api.GET("/commandes/user/:id", h.listCommandesByAdherent)
	}

	return router
}
