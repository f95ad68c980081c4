// Package integration contains the Integration bounded context.
// This context keeps a storefront (Shopify) and a marketplace (Mirakl) in step.
//
// Key concepts:
//   - CatalogSource, OrderSink, MarketplaceSink: Port interfaces for the two remote platforms
//   - Checkpoint: Persisted sync cursors plus the set of marketplace orders already materialised
//   - OfferRow: One marketplace offer line produced from a storefront variant
//   - Correlation: The marketplace order id embedded in a storefront order's tags and note
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
