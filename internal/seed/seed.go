// Package seed populates the database with fake data for development
// and manual testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"glimpse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures how much data the seeder generates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Run seeds the database. All generated users share the password
// "password123" so they can be logged into by hand.
func Run(db *gorm.DB, opts Options) error {
	log.Printf("seeding database: %d users, %d posts", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := seedUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("user seeding failed: %w", err)
	}

	posts, err := seedPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("post seeding failed: %w", err)
	}

	if err := seedEngagement(db, users, posts); err != nil {
		return fmt.Errorf("engagement seeding failed: %w", err)
	}

	log.Println("seeding complete; test users have password: password123")
	return nil
}

func clearData(db *gorm.DB) error {
	// Children first so FK constraints hold.
	for _, model := range []interface{}{
		&models.CommentLike{}, &models.Like{}, &models.Comment{},
		&models.PostPhoto{}, &models.Post{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB, n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	users := make([]models.User, 0, n)
	for len(users) < n {
		username := strings.ToLower(gofakeit.Username())
		if seen[username] || len(username) < 3 {
			continue
		}
		seen[username] = true

		users = append(users, models.User{
			Username: username,
			FullName: gofakeit.Name(),
			Password: string(hashed),
			Bio:      gofakeit.HipsterSentence(10),
		})
	}

	if err := db.CreateInBatches(&users, 50).Error; err != nil {
		return nil, err
	}
	log.Printf("created %d users", len(users))
	return users, nil
}

func seedPosts(db *gorm.DB, users []models.User, n int) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		status := models.PostStatusPublic
		if rand.Intn(10) == 0 {
			status = models.PostStatusLocked
		}
		posts = append(posts, models.Post{
			CreatedBy: author.Username,
			Content:   gofakeit.Paragraph(1, rand.Intn(3)+1, rand.Intn(12)+4, " "),
			Status:    status,
		})
	}

	if err := db.CreateInBatches(&posts, 50).Error; err != nil {
		return nil, err
	}
	log.Printf("created %d posts", len(posts))
	return posts, nil
}

// seedEngagement adds likes, comments and replies. Like counters are
// written to match the created like rows exactly.
func seedEngagement(db *gorm.DB, users []models.User, posts []models.Post) error {
	var likeTotal, commentTotal int

	for pi := range posts {
		post := &posts[pi]

		likers := rand.Perm(len(users))[:rand.Intn(len(users)/2+1)]
		for _, ui := range likers {
			like := models.Like{Liker: users[ui].Username, PostID: post.ID}
			if err := db.Create(&like).Error; err != nil {
				return err
			}
			likeTotal++
		}
		if err := db.Model(post).UpdateColumn("like_count", len(likers)).Error; err != nil {
			return err
		}

		numComments := rand.Intn(6)
		for i := 0; i < numComments; i++ {
			comment := models.Comment{
				PostID:    post.ID,
				Commenter: users[rand.Intn(len(users))].Username,
				Content:   gofakeit.HipsterSentence(rand.Intn(12) + 3),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
			commentTotal++

			numReplies := rand.Intn(3)
			for j := 0; j < numReplies; j++ {
				reply := models.Comment{
					PostID:    post.ID,
					Commenter: users[rand.Intn(len(users))].Username,
					Content:   gofakeit.HipsterSentence(rand.Intn(8) + 2),
					ParentID:  &comment.ID,
				}
				if err := db.Create(&reply).Error; err != nil {
					return err
				}
				commentTotal++
			}
		}
	}

	log.Printf("created %d likes and %d comments", likeTotal, commentTotal)
	return nil
}
