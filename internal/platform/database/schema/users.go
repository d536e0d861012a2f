package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Name         string
	Lastname     string
	Email        string
	Gender       string
	Birthday     string
	Bio          string
	ImageDataURL string
	IsVerified   string
	CreatedAt    string
	UpdatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "user_id",
	Username:     "username",
	Name:         "name",
	Lastname:     "lastname",
	Email:        "email",
	Gender:       "gender",
	Birthday:     "birthday",
	Bio:          "bio",
	ImageDataURL: "image_data_url",
	IsVerified:   "is_verified",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

