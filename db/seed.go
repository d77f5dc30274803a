package db

import (
	"context"
	"log"

	"lebs_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedInventory fills an empty inventory with the lab's standard equipment
// list. Existing rows are left alone, so running it again is harmless.
func SeedInventory(ctx context.Context, db *gorm.DB) error {
	items := []models.Item{
		{Name: "Flathead Wrench", Type: "Hand Tools", Quantity: 4},
		{Name: "Ratchet Wrench", Type: "Hand Tools", Quantity: 3},
		{Name: "Needle-nose Pliers", Type: "Hand Tools", Quantity: 3},
		{Name: "Claw Hammer", Type: "Hand Tools", Quantity: 4},
		{Name: "Measuring Tape", Type: "Hand Tools", Quantity: 3},
		{Name: "Hacksaw", Type: "Hand Tools", Quantity: 2},
		{Name: "Angle Grinder", Type: "Power Tools", Quantity: 5},
		{Name: "Power Screwdriver", Type: "Power Tools", Quantity: 3},
		{Name: "Soldering Iron", Type: "Power Tools", Quantity: 2},
		{Name: "Vernier Caliper", Type: "Measuring & Testing Instruments", Quantity: 5},
		{Name: "Multimeter", Type: "Measuring & Testing Instruments", Quantity: 5},
		{Name: "Oscilloscope", Type: "Measuring & Testing Instruments", Quantity: 1},
		{Name: "Utility Knife", Type: "Cutting Tools", Quantity: 15},
		{Name: "Chisels", Type: "Cutting Tools", Quantity: 10},
		{Name: "Welding Machine", Type: "Heavy Equipment Machinery & Tools", Quantity: 10},
		{Name: "Safety Goggles", Type: "Safety Equipment", Quantity: 10},
		{Name: "Insulated Gloves", Type: "Safety Equipment", Quantity: 5},
		{Name: "First Aid Kit", Type: "Safety Equipment", Quantity: 1},
		{Name: "Toolboxes", Type: "Storage & Supporting Equipment", Quantity: 3},
		{Name: "Storage Racks", Type: "Storage & Supporting Equipment", Quantity: 7},
	}
	for i := range items {
		items[i].Status = models.ItemStatus(items[i].Quantity, 0)
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error; err != nil {
		return err
	}
	log.Printf("seeded inventory with %d equipment lines", len(items))
	return nil
}
