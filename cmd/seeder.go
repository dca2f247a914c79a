package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/auth"
	projectdm "github.com/careertodo/platform/internal/core/datamodel/project"
	reputationdm "github.com/careertodo/platform/internal/core/datamodel/reputation"
	userdm "github.com/careertodo/platform/internal/core/datamodel/user"
	"github.com/careertodo/platform/internal/roles"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"verification_requests", "project_members", "projects", "reputation_scores", "user_permissions", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		permissions := []userdm.Permission{
			{Name: auth.PermissionAdmin, Description: "Full administrator"},
			{Name: auth.PermissionManageStudents, Description: "Can manage enrolled students and decide on their behalf"},
			{Name: auth.PermissionRequestVerification, Description: "Can request verification access to student profiles"},
			{Name: auth.PermissionDecideVerification, Description: "Can decide verification requests"},
			{Name: auth.PermissionViewReputation, Description: "Can view any reputation score"},
			{Name: auth.PermissionSubmitRatings, Description: "Can submit peer ratings after project completion"},
		}

		permIDs := make(map[string]int64)
		for i := range permissions {
			p := &permissions[i]
			if err := db.Where(userdm.Permission{Name: p.Name}).FirstOrCreate(p).Error; err != nil {
				log.Fatalf("failed to seed permission %s: %v", p.Name, err)
			}
			permIDs[p.Name] = p.ID
		}
		fmt.Println("Seeded permission vocabulary")

		type seedUser struct {
			Email       string
			Name        string
			AccountType string
			Permissions []string
		}

		seedUsers := []seedUser{
			{"admin@careertodo.com", "Platform Admin", auth.AccountTypeAdmin,
				[]string{auth.PermissionAdmin}},
			{"dean@stateu.edu", "State University", auth.AccountTypeUniversity,
				[]string{auth.PermissionManageStudents, auth.PermissionDecideVerification, auth.PermissionViewReputation}},
			{"maya@stateu.edu", "Maya Rahma", auth.AccountTypeStudent,
				[]string{auth.PermissionSubmitRatings}},
			{"bayu@stateu.edu", "Bayu Pratama", auth.AccountTypeStudent,
				[]string{auth.PermissionSubmitRatings}},
			{"hr@acmecorp.com", "Acme Corp Recruiting", auth.AccountTypeEmployer,
				[]string{auth.PermissionRequestVerification}},
			{"fund@seedline.vc", "Seedline Ventures", auth.AccountTypeInvestor,
				[]string{auth.PermissionRequestVerification}},
		}

		userIDs := make(map[string]int64)
		for _, u := range seedUsers {
			row := userdm.User{
				Email:        u.Email,
				Name:         u.Name,
				PasswordHash: string(hash),
				AccountType:  u.AccountType,
				IsActive:     true,
			}
			res := db.Where(userdm.User{Email: u.Email}).FirstOrCreate(&row)
			if res.Error != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, res.Error)
			}
			if res.RowsAffected > 0 {
				fmt.Printf("Seeded %s user: %s\n", u.AccountType, u.Email)
			}
			userIDs[u.Email] = row.ID

			for _, permName := range u.Permissions {
				pid, ok := permIDs[permName]
				if !ok {
					log.Fatalf("permission not found: %s", permName)
				}
				grant := userdm.UserPermission{UserID: row.ID, PermissionID: pid}
				if err := db.Where(userdm.UserPermission{UserID: row.ID, PermissionID: pid}).FirstOrCreate(&grant).Error; err != nil {
					log.Fatalf("failed to grant permission %s to %s: %v", permName, u.Email, err)
				}
			}
		}

		// Enroll the students at the seeded university
		uniID := userIDs["dean@stateu.edu"]
		for _, email := range []string{"maya@stateu.edu", "bayu@stateu.edu"} {
			if err := db.Model(&userdm.User{}).Where("id = ?", userIDs[email]).Update("university_id", uniID).Error; err != nil {
				log.Fatalf("failed to enroll student %s: %v", email, err)
			}
		}

		// Every student account starts with a zeroed reputation row
		for _, u := range seedUsers {
			if u.AccountType != auth.AccountTypeStudent {
				continue
			}
			row := reputationdm.Score{UserID: userIDs[u.Email]}
			if err := db.Where(reputationdm.Score{UserID: row.UserID}).FirstOrCreate(&row).Error; err != nil {
				log.Fatalf("failed to seed reputation row for %s: %v", u.Email, err)
			}
		}
		fmt.Println("Seeded reputation rows for student accounts")

		proj := projectdm.Project{
			Name:         "Campus Delivery Co-op",
			UniversityID: &uniID,
			OwnerID:      userIDs["maya@stateu.edu"],
			Status:       "active",
		}
		res := db.Where(projectdm.Project{Name: proj.Name}).FirstOrCreate(&proj)
		if res.Error != nil {
			log.Fatalf("failed to seed project: %v", res.Error)
		}
		if res.RowsAffected > 0 {
			fmt.Println("Seeded project:", proj.Name)
		}

		members := []struct {
			Email string
			Role  roles.ProjectRole
		}{
			{"maya@stateu.edu", roles.RoleProjectLead},
			{"bayu@stateu.edu", roles.RoleContributor},
		}
		for _, m := range members {
			row := projectdm.Member{
				ProjectID: proj.ID,
				UserID:    userIDs[m.Email],
				Role:      string(m.Role),
			}
			if err := db.Where(projectdm.Member{ProjectID: proj.ID, UserID: row.UserID}).FirstOrCreate(&row).Error; err != nil {
				log.Fatalf("failed to add member %s: %v", m.Email, err)
			}
		}

		fmt.Println("Database seeded successfully")
	},
}
