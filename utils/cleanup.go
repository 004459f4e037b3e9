package utils

import (
	"fmt"
	"time"

	"beatpress/config"
	"beatpress/models"
)

// StartRenewalReminder launches a background goroutine that periodically
// emails subscribers whose subscription is approaching its yearly renewal
// and have not been reminded yet. It is best-effort and logs failures.
func StartRenewalReminder(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			cfg := config.Get()
			cutoff := time.Now().AddDate(0, 0, -cfg.RenewalReminderAfterDays)

			var users []models.User
			err := db.Where("is_subscriber = ? AND renewal_reminder_sent = ? AND subscribed_at <= ?",
				true, false, cutoff).Limit(100).Find(&users).Error
			if err != nil {
				Sugar.Warnf("renewal reminder query failed: %v", err)
				continue
			}
			for _, u := range users {
				body := fmt.Sprintf("Hi %s,\n\nYour BeatPress subscription renews soon. "+
					"No action is needed to keep premium posts and music streaming.\n", u.Username)
				if err := SendMail(u.Email, "Your subscription renews soon", body); err != nil {
					Sugar.Warnf("renewal reminder mail failed for user %d: %v", u.ID, err)
					continue
				}
				// Flag regardless of later renewal outcome; reset on activation
				if err := db.Model(&models.User{}).Where("id = ?", u.ID).
					Update("renewal_reminder_sent", true).Error; err != nil {
					Sugar.Warnf("renewal reminder flag update failed for user %d: %v", u.ID, err)
				}
			}
		}
	}()
}
