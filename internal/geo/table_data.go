package geo

// areaCoordinates holds one representative point per area name found in the
// national feed. Every department name is present.
var areaCoordinates = map[string]Coordinates{
	"France": {Lat: 46.603354, Lon: 1.888334},
	"Monde":  {Lat: 44.986386, Lon: 4.572903},

	// Regions.
	"Île-de-France":              {Lat: 48.644306, Lon: 2.753786},
	"Nouvelle-Aquitaine":         {Lat: 45.403937, Lon: 0.37562},
	"Auvergne-Rhône-Alpes":       {Lat: 45.296812, Lon: 4.660481},
	"Bourgogne-Franche-Comté":    {Lat: 47.051095, Lon: 5.074057},
	"Hauts-de-France":            {Lat: 50.102461, Lon: 2.724751},
	"Grand Est":                  {Lat: 48.484516, Lon: 6.113035},
	"Centre-Val de Loire":        {Lat: 47.549025, Lon: 1.732406},
	"Normandie":                  {Lat: 49.067771, Lon: 0.313853},
	"Pays de la Loire":           {Lat: 47.659486, Lon: -0.818614},
	"Bretagne":                   {Lat: 48.264085, Lon: -2.920241},
	"Occitanie":                  {Lat: 43.648785, Lon: 2.343568},
	"Provence-Alpes-Côte d'Azur": {Lat: 44.058056, Lon: 6.063851},
	"Corse":                      {Lat: 42.18809, Lon: 9.068414},

	// Departments.
	"Ain":                     {Lat: 46.0655, Lon: 5.3486},
	"Aisne":                   {Lat: 49.453285, Lon: 3.606899},
	"Allier":                  {Lat: 46.367464, Lon: 3.163883},
	"Alpes-de-Haute-Provence": {Lat: 44.164083, Lon: 6.187852},
	"Hautes-Alpes":            {Lat: 44.656467, Lon: 6.352025},
	"Alpes-Maritimes":         {Lat: 43.921059, Lon: 7.179079},
	"Ardèche":                 {Lat: 44.815194, Lon: 4.398652},
	"Ardennes":                {Lat: 49.698012, Lon: 4.671601},
	"Ariège":                  {Lat: 42.945537, Lon: 1.406554},
	"Aube":                    {Lat: 48.320192, Lon: 4.19054},
	"Aude":                    {Lat: 43.054273, Lon: 2.512471},
	"Aveyron":                 {Lat: 44.315857, Lon: 2.50657},
	"Bouches-du-Rhône":        {Lat: 43.542418, Lon: 5.034324},
	"Calvados":                {Lat: 49.090765, Lon: -0.241395},
	"Cantal":                  {Lat: 45.04977, Lon: 2.699718},
	"Charente":                {Lat: 45.66679, Lon: 0.097305},
	"Charente-Maritime":       {Lat: 45.730227, Lon: -0.721288},
	"Cher":                    {Lat: 47.024882, Lon: 2.575333},
	"Corrèze":                 {Lat: 45.342905, Lon: 1.817642},
	"Corse-du-Sud":            {Lat: 41.873408, Lon: 9.008705},
	"Haute-Corse":             {Lat: 42.42197, Lon: 9.100907},
	"Côte-d'Or":               {Lat: 47.465503, Lon: 4.748122},
	"Côtes-d'Armor":           {Lat: 48.458422, Lon: -2.750587},
	"Creuse":                  {Lat: 46.059348, Lon: 2.048901},
	"Dordogne":                {Lat: 45.14292, Lon: 0.632126},
	"Doubs":                   {Lat: 47.066992, Lon: 6.235623},
	"Drôme":                   {Lat: 44.729646, Lon: 5.20456},
	"Eure":                    {Lat: 49.075636, Lon: 0.965203},
	"Eure-et-Loir":            {Lat: 48.44741, Lon: 1.399882},
	"Finistère":               {Lat: 48.245115, Lon: -4.04409},
	"Gard":                    {Lat: 43.95995, Lon: 4.297637},
	"Haute-Garonne":           {Lat: 43.305455, Lon: 0.971679},
	"Gers":                    {Lat: 43.695528, Lon: 0.410102},
	"Gironde":                 {Lat: 44.883746, Lon: -0.605126},
	"Hérault":                 {Lat: 43.591422, Lon: 3.355331},
	"Ille-et-Vilaine":         {Lat: 48.172768, Lon: -1.649809},
	"Indre":                   {Lat: 46.812106, Lon: 1.538205},
	"Indre-et-Loire":          {Lat: 47.223205, Lon: 0.68667},
	"Isère":                   {Lat: 45.289793, Lon: 5.634382},
	"Jura":                    {Lat: 46.783362, Lon: 5.783286},
	"Landes":                  {Lat: 44.009969, Lon: -0.643387},
	"Loir-et-Cher":            {Lat: 47.659775, Lon: 1.297184},
	"Loire":                   {Lat: 45.753854, Lon: 4.045474},
	"Haute-Loire":             {Lat: 45.085725, Lon: 3.833826},
	"Loire-Atlantique":        {Lat: 47.348161, Lon: -1.872746},
	"Loiret":                  {Lat: 47.914039, Lon: 2.307379},
	"Lot":                     {Lat: 44.624992, Lon: 1.665774},
	"Lot-et-Garonne":          {Lat: 44.36917, Lon: 0.453916},
	"Lozère":                  {Lat: 44.542571, Lon: 3.521115},
	"Maine-et-Loire":          {Lat: 47.38863, Lon: -0.39091},
	"Manche":                  {Lat: 49.091895, Lon: -1.245437},
	"Marne":                   {Lat: 48.961264, Lon: 4.312244},
	"Haute-Marne":             {Lat: 48.132941, Lon: 5.252911},
	"Mayenne":                 {Lat: 48.150782, Lon: -0.649127},
	"Meurthe-et-Moselle":      {Lat: 48.955968, Lon: 5.987038},
	"Meuse":                   {Lat: 49.012968, Lon: 5.428669},
	"Morbihan":                {Lat: 47.825981, Lon: -2.763349},
	"Moselle":                 {Lat: 49.020726, Lon: 6.538035},
	"Nièvre":                  {Lat: 47.119697, Lon: 3.54489},
	"Nord":                    {Lat: 50.528967, Lon: 3.088352},
	"Oise":                    {Lat: 49.412055, Lon: 2.406488},
	"Orne":                    {Lat: 48.576053, Lon: 0.044662},
	"Pas-de-Calais":           {Lat: 50.514406, Lon: 2.258008},
	"Puy-de-Dôme":             {Lat: 45.771534, Lon: 3.083993},
	"Pyrénées-Atlantiques":    {Lat: 43.187187, Lon: -0.728247},
	"Hautes-Pyrénées":         {Lat: 43.143793, Lon: 0.158666},
	"Pyrénées-Orientales":     {Lat: 42.625894, Lon: 2.506509},
	"Bas-Rhin":                {Lat: 48.599178, Lon: 7.533819},
	"Haut-Rhin":               {Lat: 47.865475, Lon: 7.231543},
	"Rhône":                   {Lat: 45.880235, Lon: 4.564534},
	"Haute-Saône":             {Lat: 47.638423, Lon: 6.095114},
	"Saône-et-Loire":          {Lat: 46.655709, Lon: 4.558555},
	"Sarthe":                  {Lat: 48.026929, Lon: 0.253822},
	"Savoie":                  {Lat: 45.494895, Lon: 6.38466},
	"Haute-Savoie":            {Lat: 46.068821, Lon: 6.344537},
	"Paris":                   {Lat: 48.856697, Lon: 2.351462},
	"Seine-Maritime":          {Lat: 49.663237, Lon: 0.940113},
	"Seine-et-Marne":          {Lat: 48.619021, Lon: 3.041816},
	"Yvelines":                {Lat: 48.762037, Lon: 1.887138},
	"Deux-Sèvres":             {Lat: 46.53914, Lon: -0.299478},
	"Somme":                   {Lat: 49.968971, Lon: 2.373859},
	"Tarn":                    {Lat: 43.792174, Lon: 2.133965},
	"Tarn-et-Garonne":         {Lat: 44.080656, Lon: 1.205063},
	"Var":                     {Lat: 43.417359, Lon: 6.266462},
	"Vaucluse":                {Lat: 43.993864, Lon: 5.18189},
	"Vendée":                  {Lat: 46.504056, Lon: -0.747959},
	"Vienne":                  {Lat: 46.612117, Lon: 0.465407},
	"Haute-Vienne":            {Lat: 45.919019, Lon: 1.203177},
	"Vosges":                  {Lat: 48.163786, Lon: 6.382071},
	"Yonne":                   {Lat: 47.855126, Lon: 3.645044},
	"Territoire de Belfort":   {Lat: 47.629231, Lon: 6.899301},
	"Essonne":                 {Lat: 48.53034, Lon: 2.239292},
	"Hauts-de-Seine":          {Lat: 48.840186, Lon: 2.198641},
	"Seine-Saint-Denis":       {Lat: 48.909813, Lon: 2.452863},
	"Val-de-Marne":            {Lat: 48.774489, Lon: 2.454332},
	"Val-d'Oise":              {Lat: 49.07507, Lon: 2.209811},
	"Guadeloupe":              {Lat: 16.23051, Lon: -61.687126},
	"Martinique":              {Lat: 14.636793, Lon: -61.015827},
	"Guyane":                  {Lat: 4.003988, Lon: -52.999998},
	"La Réunion":              {Lat: -21.130738, Lon: 55.53648},
	"Mayotte":                 {Lat: -12.825386, Lon: 45.148626},

	// Overseas collectivities.
	"Saint-Barthélemy":         {Lat: 17.903629, Lon: -62.811569},
	"Saint-Martin":             {Lat: 18.0708, Lon: -63.0501},
	"Saint-Pierre-et-Miquelon": {Lat: 46.8852, Lon: -56.3159},
	"Polynésie française":      {Lat: -16.034425, Lon: -146.049093},
	"Nouvelle-Calédonie":       {Lat: -20.454289, Lon: 164.556606},
	"Wallis et Futuna":         {Lat: -13.289402, Lon: -176.204224},
}

// departmentNames maps INSEE department codes to department names. The
// overseas collectivities 975, 977 and 978 appear in the testing feeds.
var departmentNames = map[string]string{
	"01":  "Ain",
	"02":  "Aisne",
	"03":  "Allier",
	"04":  "Alpes-de-Haute-Provence",
	"05":  "Hautes-Alpes",
	"06":  "Alpes-Maritimes",
	"07":  "Ardèche",
	"08":  "Ardennes",
	"09":  "Ariège",
	"10":  "Aube",
	"11":  "Aude",
	"12":  "Aveyron",
	"13":  "Bouches-du-Rhône",
	"14":  "Calvados",
	"15":  "Cantal",
	"16":  "Charente",
	"17":  "Charente-Maritime",
	"18":  "Cher",
	"19":  "Corrèze",
	"2A":  "Corse-du-Sud",
	"2B":  "Haute-Corse",
	"21":  "Côte-d'Or",
	"22":  "Côtes-d'Armor",
	"23":  "Creuse",
	"24":  "Dordogne",
	"25":  "Doubs",
	"26":  "Drôme",
	"27":  "Eure",
	"28":  "Eure-et-Loir",
	"29":  "Finistère",
	"30":  "Gard",
	"31":  "Haute-Garonne",
	"32":  "Gers",
	"33":  "Gironde",
	"34":  "Hérault",
	"35":  "Ille-et-Vilaine",
	"36":  "Indre",
	"37":  "Indre-et-Loire",
	"38":  "Isère",
	"39":  "Jura",
	"40":  "Landes",
	"41":  "Loir-et-Cher",
	"42":  "Loire",
	"43":  "Haute-Loire",
	"44":  "Loire-Atlantique",
	"45":  "Loiret",
	"46":  "Lot",
	"47":  "Lot-et-Garonne",
	"48":  "Lozère",
	"49":  "Maine-et-Loire",
	"50":  "Manche",
	"51":  "Marne",
	"52":  "Haute-Marne",
	"53":  "Mayenne",
	"54":  "Meurthe-et-Moselle",
	"55":  "Meuse",
	"56":  "Morbihan",
	"57":  "Moselle",
	"58":  "Nièvre",
	"59":  "Nord",
	"60":  "Oise",
	"61":  "Orne",
	"62":  "Pas-de-Calais",
	"63":  "Puy-de-Dôme",
	"64":  "Pyrénées-Atlantiques",
	"65":  "Hautes-Pyrénées",
	"66":  "Pyrénées-Orientales",
	"67":  "Bas-Rhin",
	"68":  "Haut-Rhin",
	"69":  "Rhône",
	"70":  "Haute-Saône",
	"71":  "Saône-et-Loire",
	"72":  "Sarthe",
	"73":  "Savoie",
	"74":  "Haute-Savoie",
	"75":  "Paris",
	"76":  "Seine-Maritime",
	"77":  "Seine-et-Marne",
	"78":  "Yvelines",
	"79":  "Deux-Sèvres",
	"80":  "Somme",
	"81":  "Tarn",
	"82":  "Tarn-et-Garonne",
	"83":  "Var",
	"84":  "Vaucluse",
	"85":  "Vendée",
	"86":  "Vienne",
	"87":  "Haute-Vienne",
	"88":  "Vosges",
	"89":  "Yonne",
	"90":  "Territoire de Belfort",
	"91":  "Essonne",
	"92":  "Hauts-de-Seine",
	"93":  "Seine-Saint-Denis",
	"94":  "Val-de-Marne",
	"95":  "Val-d'Oise",
	"971": "Guadeloupe",
	"972": "Martinique",
	"973": "Guyane",
	"974": "La Réunion",
	"975": "Saint-Pierre-et-Miquelon",
	"976": "Mayotte",
	"977": "Saint-Barthélemy",
	"978": "Saint-Martin",
}
