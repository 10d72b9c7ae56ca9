package db

import (
	"context"
	"fmt"
)

// InsertTweet stores a tweet and sets its ID
func (db *DB) InsertTweet(ctx context.Context, t *Tweet) error {
	query := `
		INSERT INTO tweets (account, author_id, message, source, tweet_type,
			in_reply_to_status_id, in_reply_to_author_id, favorited, created, sent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		t.Account,
		t.AuthorID,
		t.Message,
		t.Source,
		t.TweetType,
		t.InReplyToStatusID,
		t.InReplyToAuthorID,
		t.Favorited,
		t.Created,
		t.Sent,
	)
	if err != nil {
		return err
	}

	t.ID, err = result.LastInsertId()
	return err
}

// InsertDirectMessage stores a direct message and sets its ID
func (db *DB) InsertDirectMessage(ctx context.Context, m *DirectMessage) error {
	query := `
		INSERT INTO direct_messages (account, author_id, message, created, sent)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query, m.Account, m.AuthorID, m.Message, m.Created, m.Sent)
	if err != nil {
		return err
	}

	m.ID, err = result.LastInsertId()
	return err
}

// UpsertUser stores a user, replacing the row with the same account and author
func (db *DB) UpsertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (account, author_id, following, avatar_blob, created, modified)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account, author_id) DO UPDATE SET
			following = excluded.following,
			avatar_blob = excluded.avatar_blob,
			modified = excluded.modified
	`

	_, err := db.ExecContext(ctx, query, u.Account, u.AuthorID, u.Following, u.Avatar, u.Created, u.Modified)
	return err
}

// CountTweets returns the number of tweets stored for an account
func (db *DB) CountTweets(ctx context.Context, account string) (int, error) {
	return db.countFor(ctx, TableTweets, account)
}

// CountDirectMessages returns the number of direct messages stored for an account
func (db *DB) CountDirectMessages(ctx context.Context, account string) (int, error) {
	return db.countFor(ctx, TableDirectMessages, account)
}

// CountUsers returns the number of users known to an account
func (db *DB) CountUsers(ctx context.Context, account string) (int, error) {
	return db.countFor(ctx, TableUsers, account)
}

// table is always one of the Table* constants
func (db *DB) countFor(ctx context.Context, table, account string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE account = ?", table)
	if err := db.QueryRowContext(ctx, query, account).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
