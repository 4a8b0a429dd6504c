// Package schema resolves entity struct types into table metadata.
//
// A Descriptor lists the Column attributes of one entity type in declaration
// order, with their stored names, SQL type overrides, key flags, foreign keys
// and default-value policies, all parsed from `db` struct tags:
//
//	type Post struct {
//	    entable.Entity `table:"posts"`
//
//	    ID        int64     `db:"id,pk,autoincrement"`
//	    Title     string    `db:"title,type=VARCHAR,size=128"`
//	    Slug      string    `db:"slug,default=random"`
//	    AuthorID  int       `db:"author_id,fk=users.id,onupdate=CASCADE,ondelete=RESTRICT"`
//	    Published bool      `db:"published,default=bool:false"`
//	    CreatedAt time.Time `db:"created_at,default=current_timestamp"`
//	    Score     *int      `db:"score"` // nullable: nil means unset
//	}
//
// # Tag Options
//
//	pk                 primary key column
//	autoincrement      generated by the database on insert (alias auto_increment)
//	type=VARCHAR       declared SQL type, overriding the dialect default
//	size=64            declared type length
//	fk=table.column    foreign key target
//	onupdate=ACTION    CASCADE, SET NULL, RESTRICT, SET DEFAULT or NO ACTION
//	ondelete=ACTION    same as onupdate
//	default=POLICY     current_timestamp, unix_timestamp, random, int:N, bool:B, const:TEXT
//
// The column name defaults to the snake_case form of the field name. A tag
// of "-" skips the field, and fields without a db tag are not columns.
//
// Descriptors are computed once per type and cached; Describe is safe for
// concurrent use. Coerce and Storable convert between raw driver values and
// typed attribute values.
package schema
