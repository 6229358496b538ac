package storage

const sqliteSchema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at datetime NOT NULL
	);

CREATE TABLE
	IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		image_url TEXT,
		count INTEGER NOT NULL DEFAULT 0
	);

CREATE TABLE
	IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

CREATE TABLE
	IF NOT EXISTS wallpapers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		image_url TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		file_size TEXT,
		format TEXT,
		category_id INTEGER NOT NULL,
		is_premium boolean NOT NULL DEFAULT FALSE,
		is_featured boolean NOT NULL DEFAULT FALSE,
		is_popular boolean NOT NULL DEFAULT FALSE,
		is_new boolean NOT NULL DEFAULT TRUE,
		downloads INTEGER NOT NULL DEFAULT 0 CHECK (downloads >= 0),
		views INTEGER NOT NULL DEFAULT 0 CHECK (views >= 0),
		created_at datetime NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories (id)
	);

CREATE INDEX IF NOT EXISTS "Wallpapers Category Index" ON "wallpapers" ("category_id");

CREATE TABLE
	IF NOT EXISTS wallpaper_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wallpaper_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		UNIQUE (wallpaper_id, tag_id),
		FOREIGN KEY (wallpaper_id) REFERENCES wallpapers (id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags (id) ON DELETE CASCADE
	);

CREATE TABLE
	IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		created_at datetime NOT NULL
	);

COMMIT;
`
