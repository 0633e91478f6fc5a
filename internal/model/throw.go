package model

import "time"

// Projectile is the kind tag of a thrown notification.
type Projectile string

const (
	ProjectileBoomerang Projectile = "boomerang"
	ProjectilePaperBall Projectile = "paperball"
	ProjectileTomato    Projectile = "tomato"
)

// NormalizeProjectile maps unrecognized or empty kinds to the baseline kind.
func NormalizeProjectile(kind string) Projectile {
	switch Projectile(kind) {
	case ProjectileBoomerang, ProjectilePaperBall, ProjectileTomato:
		return Projectile(kind)
	default:
		return ProjectileBoomerang
	}
}

// PaperBall is the at-most-one pending notification for a target participant.
// It is overwritten by a newer throw and expires about a second after it was
// thrown.
type PaperBall struct {
	FromUserID   string    `json:"fromUserId" bson:"fromUserId"`
	FromUserName string    `json:"fromUserName" bson:"fromUserName"`
	ThrownAt     time.Time `json:"timestamp" bson:"timestamp"`
}

// ThrowEvent is one entry in the room's animation replay log. Consumers
// de-duplicate by ID; entries are pruned after roughly ten seconds purely to
// bound memory.
type ThrowEvent struct {
	ID             string     `json:"id" bson:"id"`
	FromUserID     string     `json:"fromUserId" bson:"fromUserId"`
	FromUserName   string     `json:"fromUserName" bson:"fromUserName"`
	TargetUserID   string     `json:"targetUserId" bson:"targetUserId"`
	TargetUserName string     `json:"targetUserName" bson:"targetUserName"`
	Projectile     Projectile `json:"projectileType" bson:"projectileType"`
	CreatedAt      time.Time  `json:"timestamp" bson:"timestamp"`
}
