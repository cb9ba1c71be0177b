package foi

// rawTreeTile mimics a map viewer response: quoted foiarray, bare feature
// keys, escaped newlines inside the attribute blob.
const rawTreeTile = `{"foiarray":[{id:"1001",name:"Aktualność danych na dzień: 2017-05-16\nJednostka zarządzająca: ZOM Śródmieście\nNazwa polska: lipa drobnolistna\nNazwa łacińska: Tilia cordata\nNumer inwentaryzacyjny: D-0001\nObwód pnia w cm: 120\nWysokość w m: 14",gtype:1,imgurl:"/mapviewer/img/tree.png",x:7501234.5,y:5790123.25,width:16,height:16},{id:"1002",name:"Nazwa polska: klon zwyczajny\nWysokość w m: 9",gtype:1,imgurl:"/mapviewer/img/tree.png",x:7501300,y:5790200,width:16,height:16}],themeMBR:[7489046.29,5774703.9,7518990.04,5801540.58],isWholeImg:false}`
