package telemetry

// Predefined service configurations
var (
	// OrderServiceConfig is the telemetry configuration for the order service
	OrderServiceConfig = Config{
		ServiceName:    "order-service",
		ServiceVersion: "1.0.0",
	}

	// InventoryServiceConfig is the telemetry configuration for the inventory service
	InventoryServiceConfig = Config{
		ServiceName:    "inventory-service",
		ServiceVersion: "1.0.0",
	}

	// PaymentServiceConfig is the telemetry configuration for the payment service
	PaymentServiceConfig = Config{
		ServiceName:    "payment-service",
		ServiceVersion: "1.0.0",
	}

	// NotificationServiceConfig is the telemetry configuration for the notification service
	NotificationServiceConfig = Config{
		ServiceName:    "notification-service",
		ServiceVersion: "1.0.0",
	}

	// DefaultConfig is the default telemetry configuration
	DefaultConfig = Config{
		ServiceName:    "unknown-service",
		ServiceVersion: "1.0.0",
	}
)

// NewConfigForService creates a new telemetry config for a custom service
func NewConfigForService(serviceName, version, otlpEndpoint string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   otlpEndpoint,
	}
}

// WithOTLPEndpoint sets the OTLP endpoint for a config
func (c Config) WithOTLPEndpoint(endpoint string) Config {
	c.OTLPEndpoint = endpoint
	return c
}

// WithVersion sets the service version for a config
func (c Config) WithVersion(version string) Config {
	c.ServiceVersion = version
	return c
}
