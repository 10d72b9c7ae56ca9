package db

import "time"

// Table names
const (
	TableAccounts       = "accounts"
	TableTweets         = "tweets"
	TableDirectMessages = "direct_messages"
	TableUsers          = "users"
	TableSyncCycles     = "sync_cycles"
)

// TwitterDateFormat is the layout the remote service uses for timestamps
const TwitterDateFormat = "Mon Jan 02 15:04:05 -0700 2006"

// Tweets table columns
const (
	TweetsID                = "id"
	TweetsAccount           = "account"
	TweetsAuthorID          = "author_id"
	TweetsMessage           = "message"
	TweetsSource            = "source"
	TweetsTweetType         = "tweet_type"
	TweetsInReplyToStatusID = "in_reply_to_status_id"
	TweetsInReplyToAuthorID = "in_reply_to_author_id"
	TweetsFavorited         = "favorited"
	TweetsCreatedDate       = "created"
	TweetsSentDate          = "sent"
	TweetsDefaultSortOrder  = TweetsSentDate + " DESC"
)

// Direct messages table columns
const (
	DirectMessagesID               = "id"
	DirectMessagesAccount          = "account"
	DirectMessagesAuthorID         = "author_id"
	DirectMessagesMessage          = "message"
	DirectMessagesCreatedDate      = "created"
	DirectMessagesSentDate         = "sent"
	DirectMessagesDefaultSortOrder = DirectMessagesSentDate + " DESC"
)

// Users table columns. Users are both senders and recipients.
const (
	UsersID               = "id"
	UsersAccount          = "account"
	UsersAuthorID         = "author_id"
	UsersFollowing        = "following"
	UsersAvatarImage      = "avatar_blob"
	UsersModifiedDate     = "modified"
	UsersCreatedDate      = "created"
	UsersDefaultSortOrder = UsersAuthorID + " ASC"
)

// Account is a row of the accounts table
type Account struct {
	Name               string
	Origin             string
	VerificationStatus string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Tweet is a row of the tweets table
type Tweet struct {
	ID                int64
	Account           string
	AuthorID          string
	Message           string
	Source            string
	TweetType         int
	InReplyToStatusID *int64
	InReplyToAuthorID *string
	Favorited         bool
	Created           time.Time
	Sent              time.Time
}

// DirectMessage is a row of the direct_messages table
type DirectMessage struct {
	ID       int64
	Account  string
	AuthorID string
	Message  string
	Created  time.Time
	Sent     time.Time
}

// User is a row of the users table
type User struct {
	ID        int64
	Account   string
	AuthorID  string
	Following bool
	Avatar    []byte
	Created   time.Time
	Modified  time.Time
}

// SyncCycle is a row of the sync_cycles history table
type SyncCycle struct {
	ID            string
	Account       string
	CorrelationID *string
	Status        string
	AuthFailures  int
	IOFailures    int
	ParseFailures int
	Iterations    int
	StartedAt     time.Time
	FinishedAt    time.Time
}
