package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/mayankshukla2904/nagrik-backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: set-status, assign, show, list, export")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "set-status":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin set-status <tracking_code> <status> [note]")
			os.Exit(1)
		}
		code, status := os.Args[2], os.Args[3]
		note := ""
		if len(os.Args) > 4 {
			note = os.Args[4]
		}
		complaint, err := storageSvc.UpdateComplaintStatus(code, status, note, "admin:cli")
		if err != nil {
			log.Fatalf("Error updating status: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", complaint.TrackingCode, complaint.Status)
	case "assign":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin assign <tracking_code> <department>")
			os.Exit(1)
		}
		code, department := os.Args[2], os.Args[3]
		complaint, err := storageSvc.AssignDepartment(code, department, "admin:cli")
		if err != nil {
			log.Fatalf("Error assigning department: %v", err)
		}
		fmt.Printf("Complaint %s assigned to %s.\n", complaint.TrackingCode, complaint.Department)
	case "show":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin show <tracking_code>")
			os.Exit(1)
		}
		if err := showComplaint(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error fetching complaint: %v", err)
		}
	case "list":
		status := ""
		if len(os.Args) > 2 {
			status = os.Args[2]
		}
		if err := listComplaints(storageSvc, status); err != nil {
			log.Fatalf("Error listing complaints: %v", err)
		}
	case "export":
		if err := exportComplaints(storageSvc); err != nil {
			log.Fatalf("Error exporting complaints: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func showComplaint(s storage.Storage, code string) error {
	complaint, err := s.GetComplaintByTrackingCode(code)
	if err != nil {
		return err
	}

	fmt.Printf("%s  [%s/%s]  %s\n", complaint.TrackingCode, complaint.Status, complaint.Priority, complaint.Title)
	fmt.Printf("  Category:   %s / %s\n", complaint.Category, complaint.Subcategory)
	fmt.Printf("  Department: %s\n", complaint.Department)
	fmt.Printf("  District:   %s\n", complaint.District)
	fmt.Printf("  Supporters: %d\n", complaint.UpvoteCount)
	fmt.Printf("  Filed:      %s via %s\n", complaint.CreatedAt.Format(time.RFC3339), complaint.Channel)
	fmt.Println("  Timeline:")
	for _, event := range complaint.Timeline {
		fmt.Printf("    %s  %s -> %s  %s (%s)\n",
			event.CreatedAt.Format("2006-01-02 15:04"), event.FromStatus, event.ToStatus, event.Note, event.Actor)
	}
	return nil
}

func listComplaints(s storage.Storage, status string) error {
	complaints, total, err := s.ListComplaints(storage.ComplaintFilter{Status: status, PerPage: 50})
	if err != nil {
		return err
	}

	for _, complaint := range complaints {
		fmt.Printf("%s  %-12s  %-8s  %3d votes  %s\n",
			complaint.TrackingCode, complaint.Status, complaint.Priority, complaint.UpvoteCount, complaint.Title)
	}
	fmt.Printf("%d of %d complaints shown.\n", len(complaints), total)
	return nil
}

func exportComplaints(s storage.Storage) error {
	complaints, err := s.ExportComplaints()
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{
		"tracking_code", "status", "priority", "severity", "category",
		"subcategory", "department", "district", "channel", "upvotes",
		"title", "created_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, complaint := range complaints {
		record := []string{
			complaint.TrackingCode,
			complaint.Status,
			complaint.Priority,
			complaint.Severity,
			complaint.Category,
			complaint.Subcategory,
			complaint.Department,
			complaint.District,
			complaint.Channel,
			strconv.Itoa(complaint.UpvoteCount),
			complaint.Title,
			complaint.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
