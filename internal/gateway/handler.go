package gateway

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"petplaza/internal/consul"

	"github.com/gin-gonic/gin"
)

// ProxyHandler proxies requests to backend services resolved via Consul
type ProxyHandler struct {
	discovery consul.ServiceDiscovery
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(discovery consul.ServiceDiscovery) *ProxyHandler {
	return &ProxyHandler{discovery: discovery}
}

// ProxyWithPathRewrite proxies requests to the named service, stripping
// the given prefix. Example: /api/feed/posts -> /posts on feed-service.
func (h *ProxyHandler) ProxyWithPathRewrite(serviceName, stripPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, err := h.discovery.DiscoverOne(serviceName)
		if err != nil {
			log.Printf("Failed to discover service %s: %v", serviceName, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": fmt.Sprintf("service %s unavailable", serviceName),
			})
			return
		}

		target := fmt.Sprintf("http://%s:%d", instance.Address, instance.Port)
		targetURL, err := url.Parse(target)
		if err != nil {
			log.Printf("Failed to parse target URL %s: %v", target, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		}

		proxy := httputil.NewSingleHostReverseProxy(targetURL)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("Proxy error for %s: %v", serviceName, err)
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"bad gateway"}`))
		}

		originalDirector := proxy.Director
		proxy.Director = func(req *http.Request) {
			originalDirector(req)
			req.URL.Scheme = targetURL.Scheme
			req.URL.Host = targetURL.Host
			req.Host = targetURL.Host

			if stripPrefix != "" && len(req.URL.Path) >= len(stripPrefix) {
				req.URL.Path = req.URL.Path[len(stripPrefix):]
				if req.URL.Path == "" {
					req.URL.Path = "/"
				}
			}
		}

		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// Health handles GET /health for the gateway itself
func (h *ProxyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gateway",
	})
}
