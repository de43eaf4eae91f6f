package airdrop

import (
	"fmt"
	"math/rand"
)

var nicknameAdjectives = []string{"Cool", "Happy", "Smart", "Fast", "Lucky"}
var nicknameNouns = []string{"Cat", "Dog", "Bird", "Fish", "Tiger"}

// RandomNickname generates a display name for a fresh account
func RandomNickname() string {
	return fmt.Sprintf("%s%s%d",
		nicknameAdjectives[rand.Intn(len(nicknameAdjectives))],
		nicknameNouns[rand.Intn(len(nicknameNouns))],
		rand.Intn(1000))
}
