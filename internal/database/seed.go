package database

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedSpace is one entry of the initial catalog.
type SeedSpace struct {
	Name        string
	Description string
	Cost        int64
}

const bedroomDescription = "Ikea ci ha regalato i lettini e con il tuo contributo arrederemo la stanza con scrivanie, sedie, due mobili, comodini e un bel tappeto accogliente"

// DefaultCatalog is the campaign's list of rooms and furnishings.
var DefaultCatalog = []SeedSpace{
	{"Bagno 1", "Contribuirai ad arredare il bagno con lavandino, tazza, bidet e piatto doccia (se rimane qualcosa compreremo anche degli asciugamani nuovi)", 3000},
	{"Vacanza", "Manderemo i bambini in gita per qualche giorno durante il trasloco e pagherai le loro vacanze dell'anno nuovo durante questo momento di cambiamento", 5000},
	{"Cameretta 1", bedroomDescription, 3000},
	{"Cameretta 2", bedroomDescription, 3000},
	{"Cameretta 3", bedroomDescription, 3000},
	{"Cameretta 4", bedroomDescription, 3000},
	{"Cameretta 5", bedroomDescription, 3000},
	{"Cucina - Elettrodomestici (frigo e forno)", "Elettrodomestici essenziali per la cucina: frigo e forno per preparare pasti nutrienti", 3000},
	{"Lavanderia - Lavatrici", "Lavatrici professionali per garantire vestiti sempre puliti e profumati", 2000},
	{"Lavanderia - Asciugatrici", "Asciugatrici efficienti per completare il ciclo di cura degli indumenti", 3000},
	{"Cucina - Elettrodomestici (fuochi, cappa e robot)", "Piano cottura, cappa aspirante e robot da cucina per cucinare insieme", 3000},
	{"Cucina - Mobili e pensili", "Mobili e pensili per organizzare e riporre tutto il necessario in cucina", 3000},
	{"Cucina - Tavolo e sedie", "Un grande tavolo con sedie dove condividere i pasti tutti insieme", 3000},
	{"Soggiorno e TV", "Area relax con televisione per momenti di svago e condivisione", 3000},
	{"Divano e tappeto gioco", "Divano comodo e tappeto morbido per giocare e rilassarsi insieme", 3000},
	{"Giardino", "Attrezzature e arredi per il giardino, spazio all'aperto per giocare", 3000},
	{"Bagno 2", "Secondo bagno completo per garantire comfort e privacy", 3000},
	{"Bagno 3", "Terzo bagno per completare i servizi della struttura", 3000},
	{"Sala visite per incontri con i genitori", "Spazio dedicato agli incontri con le famiglie d'origine dei bambini", 3000},
	{"Armadi e libreria", "Armadi per organizzare vestiti e librerie per custodire libri e giochi", 3000},
}

// Seed inserts spaces when the spaces table is empty and reports how many
// rows were inserted.  An existing catalog is left untouched.
func Seed(ctx context.Context, db *sql.DB, spaces []SeedSpace) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM spaces FOR UPDATE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count spaces: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for _, s := range spaces {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spaces (name, description, cost) VALUES (?, ?, ?)`,
			s.Name, s.Description, s.Cost); err != nil {
			return 0, fmt.Errorf("insert space %q: %w", s.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(spaces), nil
}
