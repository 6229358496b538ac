package storage

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	image_url TEXT,
	count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tags (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS wallpapers (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT,
	image_url TEXT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	file_size TEXT,
	format TEXT,
	category_id INTEGER NOT NULL REFERENCES categories (id),
	is_premium BOOLEAN NOT NULL DEFAULT FALSE,
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	is_popular BOOLEAN NOT NULL DEFAULT FALSE,
	is_new BOOLEAN NOT NULL DEFAULT TRUE,
	downloads INTEGER NOT NULL DEFAULT 0 CHECK (downloads >= 0),
	views INTEGER NOT NULL DEFAULT 0 CHECK (views >= 0),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS wallpapers_category_index ON wallpapers (category_id);

CREATE TABLE IF NOT EXISTS wallpaper_tags (
	id SERIAL PRIMARY KEY,
	wallpaper_id INTEGER NOT NULL REFERENCES wallpapers (id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
	UNIQUE (wallpaper_id, tag_id)
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id SERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);
`
