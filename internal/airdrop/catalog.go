package airdrop

// Mission is one fixed image-submission task from the service's catalog
type Mission struct {
	Kind     string
	ID       string
	ImageURL string
}

// The service exposes a fixed catalog: five image missions and two claimable
// mission rewards. Order matters for pacing, so the catalog is a slice.
var imageMissions = []Mission{
	{
		Kind:     "hamster",
		ID:       "92611072-99d6-4d39-ae06-0ef4175c0aea",
		ImageURL: "https://images.unsplash.com/photo-1425082661705-1834bfd09dca",
	},
	{
		Kind:     "cattle",
		ID:       "a78693c5-aae5-4d5c-9e07-f79777cbebbb",
		ImageURL: "https://images.unsplash.com/photo-1596733430284-f7437764b1a9",
	},
	{
		Kind:     "kiwi",
		ID:       "a11b1dd4-316c-4b75-b8f5-0c6aba7876ae",
		ImageURL: "https://images.unsplash.com/photo-1616684000067-36952fde56ec",
	},
	{
		Kind:     "lemon",
		ID:       "f052e17c-36fe-4a2b-8fc3-272ec0097ffa",
		ImageURL: "https://images.unsplash.com/photo-1590502593747-42a996133562",
	},
	{
		Kind:     "lollipop",
		ID:       "b85fbda3-0bcd-4a1e-bc2e-9e6e0f855eaf",
		ImageURL: "https://plus.unsplash.com/premium_photo-1661255468024-de3a871dfc16",
	},
}

var missionRewardIDs = []string{
	"3bb23601-b879-42b4-be72-3e175974604b",
	"31e4891d-9c1e-4ca0-8362-5be848176bf4",
}

// ImageMissions returns the fixed image mission catalog
func ImageMissions() []Mission {
	missions := make([]Mission, len(imageMissions))
	copy(missions, imageMissions)
	return missions
}

// MissionRewardIDs returns the fixed claimable reward identifiers
func MissionRewardIDs() []string {
	ids := make([]string, len(missionRewardIDs))
	copy(ids, missionRewardIDs)
	return ids
}
