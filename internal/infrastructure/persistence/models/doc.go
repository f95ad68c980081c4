// Package models contains the GORM persistence models of the sync checkpoint.
// They are kept apart from the domain checkpoint so the domain layer stays
// free of ORM tags. Mappers in checkpoint.go convert between the two.
//
// Tables:
// - sync_checkpoints: one row with the four routine cursors
// - processed_orders: one row per marketplace order already materialised
package models
