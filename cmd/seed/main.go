package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"travelcrm/internal/database"
	"travelcrm/internal/domain"
	"travelcrm/internal/repository"
)

func main() {
	db, err := database.Connect("file:travelcrm.db?_pragma=busy_timeout(5000)")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM follow_ups")
	db.Exec("DELETE FROM audit_entries")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM lead_logs")
	db.Exec("DELETE FROM leads")
	db.Exec("DELETE FROM customers")
	db.Exec("DELETE FROM inventory_days")

	ctx := context.Background()
	leadRepo := repository.NewLeadRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)

	// ================== INVENTORY ==================
	log.Println("Creating tour allotments for the next 30 days...")
	for i := 0; i < 30; i++ {
		date := time.Now().AddDate(0, 0, i).Format(domain.DateLayout)
		if err := inventoryRepo.EnsureDay(ctx, date, 20); err != nil {
			log.Fatal("failed to create allotment:", err)
		}
	}

	// ================== CUSTOMERS ==================
	log.Println("Creating customers...")
	customers := []domain.Customer{
		{Name: "Aruzhan Serikova", Email: "aruzhan@mail.kz", Phone: "+7 701 555 1001", Classification: domain.CustomerReturning, BookingsCount: 2, TotalSpent: 4200},
		{Name: "Marco Bianchi", Email: "marco.bianchi@gmail.com", Phone: "+39 340 555 2002", Classification: domain.CustomerVIP, BookingsCount: 6, TotalSpent: 15400},
		{Name: "Priya Nair", Email: "priya.nair@yahoo.com", Phone: "+91 98455 53003", Classification: domain.CustomerNew, BookingsCount: 0, TotalSpent: 0},
	}
	for i := range customers {
		persisted, err := customerRepo.Insert(ctx, customers[i])
		if err != nil {
			log.Fatal("failed to create customer:", err)
		}
		customers[i] = persisted
	}

	// ================== LEADS ==================
	log.Println("Creating leads...")
	destinations := []string{"Bali", "Santorini", "Dubai", "Phuket", "Istanbul", "Maldives"}
	sources := []string{"Website", "Instagram", "Referral", "Walk-in"}
	statuses := []domain.LeadStatus{domain.LeadNew, domain.LeadWarm, domain.LeadHot, domain.LeadOfferSent, domain.LeadCold}
	priorities := []domain.LeadPriority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}

	leads := make([]domain.Lead, 0, 12)
	for i := 0; i < 12; i++ {
		start := time.Now().AddDate(0, 0, 7+rand.Intn(21))
		end := start.AddDate(0, 0, 5+rand.Intn(5))
		l := domain.Lead{
			Name:           fmt.Sprintf("Lead Client %d", i+1),
			Email:          fmt.Sprintf("lead%d@example.com", i+1),
			Phone:          fmt.Sprintf("+7 702 555 %04d", 3000+i),
			Source:         sources[rand.Intn(len(sources))],
			Destination:    destinations[rand.Intn(len(destinations))],
			Status:         statuses[rand.Intn(len(statuses))],
			Priority:       priorities[rand.Intn(len(priorities))],
			Travelers:      1 + rand.Intn(4),
			TravelStart:    &start,
			TravelEnd:      &end,
			PotentialValue: float64(1500 + rand.Intn(8000)),
			AssignedTo:     "agent@travelcrm.kz",
		}
		persisted, err := leadRepo.Insert(ctx, l)
		if err != nil {
			log.Fatal("failed to create lead:", err)
		}
		leads = append(leads, persisted)

		if err := leadRepo.AppendLog(ctx, &domain.LeadLog{
			LeadID:  persisted.ID,
			Kind:    domain.LogNote,
			Message: "Initial enquiry received",
		}); err != nil {
			log.Fatal("failed to append lead log:", err)
		}
	}

	// One intentional near-duplicate for testing the dedup warning.
	dupStart := time.Now().AddDate(0, 0, 14)
	dup := domain.Lead{
		Name:        "Lead Client 1 (repeat)",
		Email:       "LEAD1@EXAMPLE.COM",
		Phone:       "+7 (702) 555-3000",
		Source:      "Website",
		Destination: "Bali",
		Status:      domain.LeadNew,
		Priority:    domain.PriorityMedium,
		Travelers:   2,
		TravelStart: &dupStart,
	}
	if _, err := leadRepo.Insert(ctx, dup); err != nil {
		log.Fatal("failed to create duplicate lead:", err)
	}

	// ================== FOLLOW-UPS ==================
	log.Println("Creating follow-ups...")
	types := []domain.FollowUpType{domain.FollowUpCall, domain.FollowUpEmail, domain.FollowUpWhatsApp, domain.FollowUpMeeting}
	for i, l := range leads {
		if l.Status == domain.LeadCold {
			continue
		}
		offset := rand.Intn(7) - 2 // some overdue, some upcoming
		f := domain.FollowUp{
			LeadID:      l.ID,
			ScheduledAt: time.Now().AddDate(0, 0, offset).Truncate(time.Hour),
			Type:        types[i%len(types)],
			Priority:    l.Priority,
			Status:      domain.FollowUpPending,
			Description: fmt.Sprintf("Follow up on %s enquiry", l.Destination),
		}
		if err := followUpRepo.Create(ctx, &f); err != nil {
			log.Fatal("failed to create follow-up:", err)
		}
	}

	log.Println("Seed completed.")
	log.Printf("Created %d leads, %d customers, 30 allotment days.", len(leads)+1, len(customers))
}
