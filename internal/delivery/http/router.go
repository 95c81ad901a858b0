package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/langitpay/settlement-service/internal/delivery/http/handlers"
)

func NewRouter(transactionHandler *handlers.TransactionHandler) *gin.Engine {
	engine := gin.Default()

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	transactions := engine.Group("/transactions")
	{
		transactions.POST("/transfer", transactionHandler.Transfer)
		transactions.POST("/buy-token", transactionHandler.BuyToken)
		transactions.POST("/buy-product", transactionHandler.BuyProduct)
		transactions.GET("/:id", transactionHandler.GetTransaction)
	}

	engine.POST("/callbacks/payment", transactionHandler.PaymentCallback)
	engine.GET("/products/price", transactionHandler.ProductPrice)
	engine.GET("/tokens", transactionHandler.ListTokens)

	return engine
}
