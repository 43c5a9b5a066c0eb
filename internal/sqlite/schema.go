package sqlite

// Table DDL. IF NOT EXISTS lets Open adopt databases created before schema
// versioning was introduced.
const (
	createPatients = `CREATE TABLE IF NOT EXISTS patients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    age INTEGER,
    gender TEXT,
    phone TEXT,
    created_at DATETIME
);`

	createPrescriptions = `CREATE TABLE IF NOT EXISTS prescriptions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    patient_id INTEGER NOT NULL,
    diagnosis TEXT,
    date DATETIME,
    FOREIGN KEY (patient_id) REFERENCES patients(id)
);`

	createPrescriptionItems = `CREATE TABLE IF NOT EXISTS prescription_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    prescription_id INTEGER NOT NULL,
    medicine TEXT NOT NULL CHECK (medicine <> ''),
    dosage TEXT,
    duration TEXT,
    instruction TEXT,
    FOREIGN KEY (prescription_id) REFERENCES prescriptions(id)
);`

	createInventory = `CREATE TABLE IF NOT EXISTS inventory (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    default_dosage TEXT,
    default_duration TEXT,
    default_instruction TEXT
);`

	createCertificates = `CREATE TABLE IF NOT EXISTS certificates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    patient_id INTEGER NOT NULL,
    diagnosis TEXT,
    start_date TEXT,
    end_date TEXT,
    created_at DATETIME,
    FOREIGN KEY (patient_id) REFERENCES patients(id)
);`

	createSettings = `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT
);`

	createTemplates = `CREATE TABLE IF NOT EXISTS templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    diagnosis TEXT,
    medicines TEXT
);`
)

// Index DDL for search and last-visit computation.
const (
	idxPatientsName          = `CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name COLLATE NOCASE);`
	idxPatientsPhone         = `CREATE INDEX IF NOT EXISTS idx_patients_phone ON patients(phone);`
	idxPrescriptionsPidDate  = `CREATE INDEX IF NOT EXISTS idx_prescriptions_pid_date ON prescriptions(patient_id, date);`
	idxCertificatesPidDate   = `CREATE INDEX IF NOT EXISTS idx_certificates_pid_date ON certificates(patient_id, created_at);`
	idxPrescriptionItemsRxID = `CREATE INDEX IF NOT EXISTS idx_prescription_items_rx ON prescription_items(prescription_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createPatients,
	createPrescriptions,
	createPrescriptionItems,
	createInventory,
	createCertificates,
	createSettings,
	createTemplates,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPatientsName,
	idxPatientsPhone,
	idxPrescriptionsPidDate,
	idxCertificatesPidDate,
	idxPrescriptionItemsRxID,
}

// migration is one schema step. Steps apply in version order and record the
// reached version in PRAGMA user_version.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{version: 1, name: "base tables", stmts: schemaDDL},
	{version: 2, name: "search and visit indexes", stmts: indexDDL},
}

// schemaVersion is the version a freshly migrated database reports.
var schemaVersion = migrations[len(migrations)-1].version
