package store

const Schema = `
CREATE TABLE IF NOT EXISTS songs (
	id TEXT PRIMARY KEY,
	source_id TEXT,
	url TEXT,
	title TEXT NOT NULL,
	artist TEXT,
	artists TEXT,  -- JSON array
	album TEXT,
	thumbnail TEXT,
	duration REAL DEFAULT 0,
	filename TEXT NOT NULL,
	file_hash TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_songs_source_id ON songs(source_id);
CREATE INDEX IF NOT EXISTS idx_songs_created_at ON songs(created_at);

CREATE TABLE IF NOT EXISTS playlists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS playlist_songs (
	playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	PRIMARY KEY (playlist_id, song_id)
);

CREATE INDEX IF NOT EXISTS idx_playlist_songs_song_id ON playlist_songs(song_id);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
