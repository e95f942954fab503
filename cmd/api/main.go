// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
)

func main() {
	productServiceURL, _ := url.Parse(getEnv("PRODUCT_SERVICE_URL", "http://localhost:8081"))
	userServiceURL, _ := url.Parse(getEnv("USER_SERVICE_URL", "http://localhost:8082"))

	productProxy := httputil.NewSingleHostReverseProxy(productServiceURL)
	userProxy := httputil.NewSingleHostReverseProxy(userServiceURL)

	http.Handle("/api/products", productProxy)
	http.Handle("/api/products/", productProxy)
	http.Handle("/api/users", userProxy)
	http.Handle("/api/users/", userProxy)

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
